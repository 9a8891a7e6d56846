package booking

import (
	"errors"
	"fmt"
	"time"
)

const (
	// SlotStep is the booking grid: starts and lengths move in quarter hours.
	SlotStep = 15 * time.Minute
	// LastSeating is the gap between the last bookable start and closing time.
	LastSeating = time.Hour
	// MaxLength caps a single booking.
	MaxLength = 2 * time.Hour
)

var (
	ErrInvalidClock        = errors.New("time must be formatted as HH:MM")
	ErrClosingBeforeOpen   = errors.New("closing time must be after opening time")
	ErrOutsideOpeningHours = errors.New("booking must start and end within opening hours")
	ErrExceedsClosing      = errors.New("booking exceeds restaurant closing time")
	ErrOffSlot             = errors.New("booking must start on a 15 minute slot")
	ErrInvalidLength       = errors.New("booking length must be a multiple of 15 minutes")
	ErrTooLong             = errors.New("booking length cannot exceed 2 hours")
)

// Clock is a time of day in minutes since midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, ErrInvalidClock
}

func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On -> the instant at this clock on t's calendar day, in t's location
func (c Clock) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, t.Location())
}

// Hours are a restaurant's daily opening hours.
type Hours struct {
	Open  Clock
	Close Clock
}

func ParseHours(open, close string) (Hours, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Hours{}, fmt.Errorf("opening time: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Hours{}, fmt.Errorf("closing time: %w", err)
	}
	h := Hours{Open: o, Close: c}
	return h, h.Validate()
}

func (h Hours) Validate() error {
	if h.Close <= h.Open {
		return ErrClosingBeforeOpen
	}
	return nil
}

func (h Hours) lastStart() Clock {
	return h.Close - Clock(LastSeating/time.Minute)
}

// Slots lists the start times offered by the booking form, every SlotStep from
// opening until one hour before closing.
func (h Hours) Slots() []Clock {
	step := Clock(SlotStep / time.Minute)
	var slots []Clock
	for c := h.Open; c < h.lastStart(); c += step {
		slots = append(slots, c)
	}
	return slots
}

func (h Hours) isSlot(c Clock) bool {
	step := Clock(SlotStep / time.Minute)
	return c >= h.Open && c < h.lastStart() && (c-h.Open)%step == 0
}

// Admits checks an interval against the opening hours: it must start on a slot
// and finish on the same day no later than closing.
func (h Hours) Admits(iv Interval) error {
	start := iv.Start
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return ErrOffSlot
	}
	sc := ClockOf(start)
	if sc < h.Open || sc >= h.lastStart() {
		return ErrOutsideOpeningHours
	}
	if !h.isSlot(sc) {
		return ErrOffSlot
	}
	if iv.End.After(h.Close.On(start)) {
		return ErrExceedsClosing
	}
	return nil
}

// ValidateLength -> length must be positive, on the slot grid and at most MaxLength
func ValidateLength(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidInterval
	}
	if d%SlotStep != 0 {
		return ErrInvalidLength
	}
	if d > MaxLength {
		return ErrTooLong
	}
	return nil
}
