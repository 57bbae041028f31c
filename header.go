package pandump

import "pandump/region"

// Record layout, little-endian: [magic:4][len:4][payload:len]
//
// The magic sentinel goes in last. Finding it proves the payload and the
// length were already in place when the writing process died.
const (
	HeaderSize = 8

	Magic uint32 = 0xB007D1A6
)

// Available returns the payload capacity of reg, 0 when the region cannot
// hold a record at all.
func Available(reg *region.Region) int {
	if reg == nil || reg.Capacity() < HeaderSize {
		return 0
	}
	return reg.Capacity() - HeaderSize
}

func putUint32LE(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

func readUint32LE(buf []byte) uint32 {
	return uint32(buf[0]) |
		uint32(buf[1])<<8 |
		uint32(buf[2])<<16 |
		uint32(buf[3])<<24
}
