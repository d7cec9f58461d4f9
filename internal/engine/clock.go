package engine

import "time"

// Clock supplies "now" for due-date computation and hold-window expiry, the
// only time-based semantics in the engine. Production uses SystemClock;
// tests inject a settable clock so overdue days and expiry are exact.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
