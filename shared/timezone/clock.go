package timezone

import "time"

// Clock is the wall-clock source used for past-slot checks and availability horizons.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return Now()
}

// NewClock returns a Clock reading the current time in the application timezone.
func NewClock() Clock {
	return systemClock{}
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// StartOfHour truncates t to the start of its hour in t's own location.
func StartOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// IsStartOfHour reports whether t sits exactly on an hour boundary.
func IsStartOfHour(t time.Time) bool {
	return t.Equal(StartOfHour(t))
}
