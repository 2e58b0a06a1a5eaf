// Package lunar decides whether a timestamp falls close to a moon phase.
// Reference phase dates come from an external table; no astronomy is done here.
package lunar

import (
	"fmt"
	"time"
)

// DefaultWindowDays is how many calendar days either side of a reference
// phase date still count as "near" that phase.
const DefaultWindowDays = 5

// Phase names a reference lunar phase.
type Phase int

const (
	FullMoon Phase = iota
	NewMoon
)

func (p Phase) String() string {
	switch p {
	case FullMoon:
		return "full"
	case NewMoon:
		return "new"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Window matches timestamps against reference dates with a fixed day radius.
type Window struct {
	days int
}

// Option configures a Window.
type Option func(*Window) error

// WithDays overrides the window radius. Negative values are rejected.
func WithDays(days int) Option {
	return func(w *Window) error {
		if days < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidWindow, days)
		}
		w.days = days
		return nil
	}
}

// NewWindow builds a Window using DefaultWindowDays unless overridden.
func NewWindow(opts ...Option) (*Window, error) {
	w := &Window{days: DefaultWindowDays}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Days returns the configured radius.
func (w *Window) Days() int { return w.days }

// IsNear reports whether ts is within the window of any reference date.
func (w *Window) IsNear(ts time.Time, refs []time.Time) bool {
	return IsNearPhase(ts, refs, w.days)
}

// IsNearPhase reports whether the calendar date of ts lies within windowDays
// days, inclusive in both directions, of the calendar date of any reference.
// Dates are compared in each value's own location.
func IsNearPhase(ts time.Time, refs []time.Time, windowDays int) bool {
	day := civilDay(ts)
	for _, ref := range refs {
		diff := day - civilDay(ref)
		if diff < 0 {
			diff = -diff
		}
		if diff <= int64(windowDays) {
			return true
		}
	}
	return false
}

// civilDay returns the number of days since the Unix epoch for the calendar
// date shown on t.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
