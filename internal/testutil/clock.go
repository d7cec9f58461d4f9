// Package testutil provides deterministic test doubles shared across
// packages: a settable clock for pinning due dates and hold windows.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a settable wall clock for tests. Implements engine.Clock.
//
// Thread-safe, though tests are typically single-threaded like the engine.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the frozen time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Time may move backwards; tests that force a due
// date into the past rely on that.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
