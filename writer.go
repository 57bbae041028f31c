package pandump

import "pandump/region"

// Writer streams failure text into a region and publishes it as one record.
// It is built for code that runs while the program is dying: Write and
// Commit never fail, never allocate, and touch nothing outside the region.
//
// The zero Writer is inert. Text past the payload capacity is discarded
// without comment; whatever fit is what the next boot will see.
type Writer struct {
	buf    []byte
	off    int
	sealed bool
}

// NewWriter returns a writer over reg. Creating a writer retracts any
// record still in the region, so a writer that dies before Commit leaves
// the region empty instead of mixing two records. A region with no payload
// space yields an inert writer that touches nothing.
func NewWriter(reg *region.Region) *Writer {
	if reg == nil || reg.Capacity() <= HeaderSize {
		return &Writer{}
	}
	buf := reg.Bytes()
	putUint32LE(buf[0:4], 0)
	return &Writer{buf: buf}
}

// Write appends p to the pending record, truncating to the space left.
// The returned count is always len(p) so fmt helpers never short-circuit.
func (w *Writer) Write(p []byte) (int, error) {
	if !w.sealed && len(w.buf) > 0 {
		w.off += copy(w.buf[HeaderSize+w.off:], p)
	}
	return len(p), nil
}

// WriteString is Write without forcing callers through a byte conversion.
func (w *Writer) WriteString(s string) (int, error) {
	if !w.sealed && len(w.buf) > 0 {
		w.off += copy(w.buf[HeaderSize+w.off:], s)
	}
	return len(s), nil
}

// Commit publishes the pending record: length first, sentinel last, so a
// reader that finds the sentinel finds a complete record. A record with no
// payload is not published. The writer is sealed either way; anything
// written afterwards is discarded.
func (w *Writer) Commit() {
	if w.sealed {
		return
	}
	w.sealed = true
	if len(w.buf) == 0 || w.off == 0 {
		return
	}
	putUint32LE(w.buf[4:8], uint32(w.off))
	putUint32LE(w.buf[0:4], Magic)
}

// Persist records msg in one step. A message longer than the payload
// capacity is cut, not rejected.
func Persist(reg *region.Region, msg []byte) {
	w := NewWriter(reg)
	w.Write(msg)
	w.Commit()
}

// PersistString is Persist for string messages.
func PersistString(reg *region.Region, msg string) {
	w := NewWriter(reg)
	w.WriteString(msg)
	w.Commit()
}
