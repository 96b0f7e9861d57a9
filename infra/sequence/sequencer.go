package sequence

import "sync/atomic"

// Sequencer issues strictly monotonic arrival numbers. Safe for concurrent use.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer whose first issued value is start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence number (0 if none).
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset repositions the sequencer so the next value is v+1.
// Only collaborators resuming a persisted counter call this.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}

// AdvanceTo raises the counter to v when it is behind and never lowers it,
// so values already issued by concurrent callers are not reissued.
func (s *Sequencer) AdvanceTo(v uint64) {
	for {
		cur := s.next.Load()
		if cur >= v || s.next.CompareAndSwap(cur, v) {
			return
		}
	}
}
