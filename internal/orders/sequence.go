package orders

import "sync/atomic"

// Sequencer issues increasing request numbers. Only the response carrying
// the latest number may be applied; older ones are stale.
type Sequencer struct {
	last atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && s.last.Load() == seq
}
