package region

import "errors"

var (
	ErrBadBounds    = errors.New("region: bounds do not match buffer")
	ErrSizeMismatch = errors.New("region: backing file size mismatch")
)

// Region is a handle over a contiguous byte window [start, end).
// The labels travel with the window; capacity is always end minus start.
type Region struct {
	start uint64
	end   uint64
	buf   []byte
	unmap func() error
}

// New wraps buf as the window [start, end). The labels are recorded
// verbatim and must span exactly len(buf) bytes.
func New(start, end uint64, buf []byte) (*Region, error) {
	if end < start || end-start != uint64(len(buf)) {
		return nil, ErrBadBounds
	}
	return &Region{start: start, end: end, buf: buf}, nil
}

// FromBuffer wraps buf as an anonymous window starting at 0.
func FromBuffer(buf []byte) *Region {
	return &Region{start: 0, end: uint64(len(buf)), buf: buf}
}

// Start returns the label of the first byte.
func (r *Region) Start() uint64 { return r.start }

// End returns the label one past the last byte.
func (r *Region) End() uint64 { return r.end }

// Capacity returns the window size in bytes.
func (r *Region) Capacity() int { return len(r.buf) }

// Bytes exposes the raw window.
func (r *Region) Bytes() []byte { return r.buf }

// Close releases provider resources. Regions over plain buffers have none.
// The window must not be touched after Close.
func (r *Region) Close() error {
	if r.unmap == nil {
		return nil
	}
	f := r.unmap
	r.unmap = nil
	r.buf = nil
	return f()
}
