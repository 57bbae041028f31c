//go:build unix

package region

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MapFile maps path as a shared read-write window of exactly size bytes.
// The file is created and sized on first use; an existing file is mapped
// as-is, never truncated, so a record left by a previous process is intact.
// The window's start and end are the mapped virtual addresses.
//
// Writes land in the kernel page cache and survive the writing process
// without any explicit sync. They do not survive the host when the file
// lives on tmpfs.
func MapFile(path string, size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrBadBounds
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}
	switch {
	case st.Size() == 0:
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("region: size %s: %w", path, err)
		}
	case st.Size() != int64(size):
		return nil, fmt.Errorf("region: %s holds %d bytes, want %d: %w",
			path, st.Size(), size, ErrSizeMismatch)
	}

	buf, err := unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}

	start := uint64(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	return &Region{
		start: start,
		end:   start + uint64(size),
		buf:   buf,
		unmap: func() error { return unix.Munmap(buf) },
	}, nil
}

// MapShared is MapFile under /dev/shm: RAM-backed, cleared by a host
// reboot, untouched by a process restart.
func MapShared(name string, size int) (*Region, error) {
	return MapFile(filepath.Join("/dev/shm", name), size)
}
