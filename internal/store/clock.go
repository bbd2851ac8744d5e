package store

import "sync/atomic"

// Clock is the monotonic commit counter.
//
// Every committed dispatch is stamped with the next value. Seq 0 means
// "initialized, nothing dispatched yet". Reads are atomic so a Loop's
// owner may observe progress from another goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
