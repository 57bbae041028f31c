//go:build !msgutf8

package pandump

import "pandump/region"

// Message returns the failure text left by the previous run, or ok=false
// when nothing was recorded. The record is invalidated on the way out, so
// only the first call after a crash sees it. The slice aliases the region
// and stays valid until the next failure writes over it.
func Message(reg *region.Region) ([]byte, bool) {
	return consume(reg)
}
