package dispatch

import "sync/atomic"

// Clock is the monotonic logical clock that stamps audit entries.
//
// All ordering in the audit trail uses seq numbers from this clock, never
// wall-clock timestamps: wall time races, drifts, and repeats; the counter
// does not.
//
// Thread-safety: Clock is safe for concurrent use, which matters when the
// host processes independent records in parallel.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number,
// typically store.LastSeq after a restart.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, strictly increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
