package graph

import (
	"sync"
	"time"
)

// StateClock hands out strictly increasing logical times in milliseconds.
// Two calls within the same millisecond differ by a fraction.
type StateClock struct {
	mu   sync.Mutex
	last float64
	now  func() time.Time
}

// NewStateClock returns a clock driven by the wall clock.
func NewStateClock() *StateClock { return &StateClock{now: time.Now} }

// Now returns the next logical time.
func (c *StateClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := float64(c.now().UnixMilli())
	if t <= c.last {
		t = c.last + 0.001
	}
	c.last = t
	return t
}
