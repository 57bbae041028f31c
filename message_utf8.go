//go:build msgutf8

package pandump

import (
	"unicode/utf8"

	"pandump/region"
)

// Message returns the failure text left by the previous run, or ok=false
// when nothing was recorded. The record is invalidated on the way out, so
// only the first call after a crash sees it. The slice aliases the region
// and stays valid until the next failure writes over it.
//
// This build never hands out malformed text: when truncation cut a rune in
// half the longest valid prefix is returned instead, and a payload with no
// valid prefix reads as absent.
func Message(reg *region.Region) ([]byte, bool) {
	b, ok := consume(reg)
	if !ok {
		return nil, false
	}
	if !utf8.Valid(b) {
		b = b[:validPrefixLen(b)]
	}
	if len(b) == 0 {
		return nil, false
	}
	return b, true
}

// MessageString is Message with the payload copied out as a string.
func MessageString(reg *region.Region) (string, bool) {
	b, ok := Message(reg)
	if !ok {
		return "", false
	}
	return string(b), true
}

func validPrefixLen(b []byte) int {
	n := 0
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if r == utf8.RuneError && size < 2 {
			break
		}
		n += size
	}
	return n
}
