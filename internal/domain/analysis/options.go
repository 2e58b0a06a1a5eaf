package analysis

import (
	"fmt"

	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/segment"
)

// Option configures an Engine. Invalid arguments make New fail.
type Option func(*Engine) error

// WithGrouping selects how periods are grouped across locations.
func WithGrouping(g segment.Grouping) Option {
	return func(e *Engine) error {
		if g != segment.PerLocation && g != segment.Pooled {
			return fmt.Errorf("%w: %s", segment.ErrInvalidGrouping, g)
		}
		e.grouping = g
		return nil
	}
}

// WithMoonWindowDays overrides the moon phase window radius.
func WithMoonWindowDays(days int) Option {
	return func(e *Engine) error {
		if days < 0 {
			return fmt.Errorf("%w: %d days", lunar.ErrInvalidWindow, days)
		}
		e.moonDays = days
		return nil
	}
}
