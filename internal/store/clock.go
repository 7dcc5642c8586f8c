package store

import "sync/atomic"

// Clock is the store's monotonic logical clock. Every run is stamped with a
// strictly increasing seq from Next().
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock whose next value is start+1.
// Open uses it to resume after the highest stored seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// NextAfter returns the next sequence number that is also greater than
// floor. Writers pass the highest seq stored in the database so that several
// Store handles on one file never issue the same seq.
func (c *Clock) NextAfter(floor int64) int64 {
	for {
		cur := c.seq.Load()
		next := max(cur, floor) + 1
		if c.seq.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
