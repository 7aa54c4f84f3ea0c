package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// ParseBulletin never reads it; only pipeline edges ask for Today.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current instant in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return DateOf(Now())
}
