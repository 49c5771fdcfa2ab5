package engine

import "sync/atomic"

// Clock is a monotonic logical clock for event ordering.
//
// Every event in a resolution is stamped with a strictly increasing seq
// number from a clock that starts at zero, so two resolutions of identical
// inputs yield identical seq values (and therefore identical content-
// addressed event ids). Wall-clock timestamps are never used for ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the dispatcher's single-threaded design means only one goroutine
// normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when re-stamping a log resumed from storage.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
