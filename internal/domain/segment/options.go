package segment

import (
	"fmt"
	"strings"
)

// Grouping selects which records may share a period.
type Grouping int

const (
	// PerLocation splits the sequence by location ID first, so sightings at
	// two sites never merge into one period. Periods are summed across sites.
	PerLocation Grouping = iota
	// Pooled treats the whole sequence as one stream regardless of location.
	Pooled
)

func (g Grouping) String() string {
	switch g {
	case PerLocation:
		return "location"
	case Pooled:
		return "pooled"
	default:
		return fmt.Sprintf("grouping(%d)", int(g))
	}
}

// ParseGrouping accepts "location" or "pooled" (case-insensitive).
func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "location", "per_location", "per-location":
		return PerLocation, nil
	case "pooled", "species":
		return Pooled, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrouping, s)
	}
}

// Option configures a Segmenter. Invalid arguments make New fail.
type Option func(*Segmenter) error

// WithGrouping sets the grouping key.
func WithGrouping(g Grouping) Option {
	return func(s *Segmenter) error {
		if g != PerLocation && g != Pooled {
			return fmt.Errorf("%w: %s", ErrInvalidGrouping, g)
		}
		s.grouping = g
		return nil
	}
}
