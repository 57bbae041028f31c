package pandump

import "pandump/region"

// consume checks the header, invalidates the record and returns the raw
// payload window. Both message modes funnel through here, so invalidation
// happens exactly once no matter how the payload is judged afterwards.
func consume(reg *region.Region) ([]byte, bool) {
	if reg == nil || reg.Capacity() < HeaderSize {
		return nil, false
	}
	buf := reg.Bytes()
	if readUint32LE(buf[0:4]) != Magic {
		return nil, false
	}
	n := int(readUint32LE(buf[4:8]))
	if max := len(buf) - HeaderSize; n < 0 || n > max {
		// a torn or corrupted length shortens the record, never widens it
		n = max
	}
	putUint32LE(buf[0:4], 0)
	if n == 0 {
		return nil, false
	}
	return buf[HeaderSize : HeaderSize+n], true
}
