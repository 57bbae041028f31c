package pandump

import "pandump/region"

// State is what a probe of a region reports.
type State uint8

const (
	StateEmpty State = iota
	StateRecorded
	StateInoperative
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateRecorded:
		return "RECORDED"
	case StateInoperative:
		return "INOPERATIVE"
	default:
		return "UNKNOWN"
	}
}

// Peek reports whether reg holds a committed record, without consuming it.
// It inspects the header only; a consumed record reports EMPTY exactly like
// a region nothing was ever written to.
func Peek(reg *region.Region) State {
	if reg == nil || reg.Capacity() < HeaderSize {
		return StateInoperative
	}
	buf := reg.Bytes()
	if readUint32LE(buf[0:4]) != Magic {
		return StateEmpty
	}
	n := int(readUint32LE(buf[4:8]))
	if max := len(buf) - HeaderSize; n < 0 || n > max {
		n = max
	}
	if n == 0 {
		return StateEmpty
	}
	return StateRecorded
}
