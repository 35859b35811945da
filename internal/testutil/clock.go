package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe deterministic time source for tests.
//
// Each call to Now returns the current instant and advances it by a
// fixed step, so records written in sequence get distinct, reproducible
// timestamps regardless of wall-clock speed.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedClock creates a clock starting at start, advancing by step
// per Now call.
func NewFixedClock(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Set rewinds or advances the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
