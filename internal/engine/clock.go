package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Calculator reads "today" and the two-digit year pivot from it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. The CLI's --as-of flag uses
// it to evaluate ages on a given date.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
