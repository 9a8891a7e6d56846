package booking

import (
	"errors"
	"time"
)

var (
	ErrInvalidInterval  = errors.New("end time must be after start time")
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrPartyTooLarge    = errors.New("party size exceeds table capacity")
	ErrTableUnavailable = errors.New("table unavailable for this time")
	ErrNoTableAvailable = errors.New("no tables available for this time")
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval -> builds an interval, rejecting empty or reversed ranges
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share at least one instant.
// Back-to-back intervals (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Conflicts -> true when proposed overlaps any of the existing intervals
func Conflicts(existing []Interval, proposed Interval) bool {
	for _, e := range existing {
		if e.Overlaps(proposed) {
			return true
		}
	}
	return false
}
