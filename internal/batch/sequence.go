package batch

import "sync/atomic"

// Sequence hands out increasing result numbers. Each call to Next returns a
// value no other call has returned, so ids built from it never collide.
type Sequence struct {
	n atomic.Uint64
}

func NewSequence() *Sequence { return &Sequence{} }

// Next increments the counter and returns the new value (starting at 1).
func (s *Sequence) Next() uint64 { return s.n.Add(1) }

// Current returns the last value handed out.
func (s *Sequence) Current() uint64 { return s.n.Load() }
