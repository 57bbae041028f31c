package outbox

import "sync/atomic"

// Sequencer generates strictly monotonic report IDs.
// It is deterministic and replay-safe.
type Sequencer struct {
	next atomic.Uint64
}

// NewSequencer creates a sequencer seeded with the last issued ID.
// On a fresh store that is 0; after a restart it is the highest key found.
func NewSequencer(last uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(last)
	return s
}

// Next returns the next report ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued ID.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
