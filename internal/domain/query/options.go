package query

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/model"
)

// Option adds a predicate to a Filter. Invalid arguments make New fail.
type Option func(*Filter) error

// SpeciesOnly keeps records tagged with sp, matched by name and scientific name.
func SpeciesOnly(sp model.Species) Option {
	return func(f *Filter) error {
		f.add("species", func(r *model.PhotoRecord) bool { return r.HasSpecies(sp) })
		return nil
	}
}

// AnySpeciesPresent drops records without any species entry.
func AnySpeciesPresent() Option {
	return func(f *Filter) error {
		f.add("any_species", func(r *model.PhotoRecord) bool { return len(r.Species) > 0 })
		return nil
	}
}

// LocationOnly keeps records taken at loc. Locations are compared by ID.
func LocationOnly(loc model.Location) Option {
	return LocationIDOnly(loc.ID)
}

// LocationIDOnly keeps records whose location ID equals id. An empty id
// selects records with an unknown location.
func LocationIDOnly(id string) Option {
	return func(f *Filter) error {
		f.add("location", func(r *model.PhotoRecord) bool { return r.LocationID == id })
		return nil
	}
}

// YearOnly keeps records taken in any of the given years.
func YearOnly(years ...int) Option {
	return func(f *Filter) error {
		if len(years) == 0 {
			return fmt.Errorf("%w: year", ErrNoValues)
		}
		set := slices.Clone(years)
		f.add("year", func(r *model.PhotoRecord) bool {
			return slices.Contains(set, r.Timestamp.Year())
		})
		return nil
	}
}

// MonthOnly keeps records taken in any of the given months.
func MonthOnly(months ...time.Month) Option {
	return func(f *Filter) error {
		if len(months) == 0 {
			return fmt.Errorf("%w: month", ErrNoValues)
		}
		var set [13]bool
		for _, m := range months {
			if m < time.January || m > time.December {
				return fmt.Errorf("%w: %d", ErrInvalidMonth, m)
			}
			set[m] = true
		}
		f.add("month", func(r *model.PhotoRecord) bool { return set[r.Timestamp.Month()] })
		return nil
	}
}

// TimeFrame keeps records whose hour of day is in [start, end).
func TimeFrame(start, end int) Option {
	return func(f *Filter) error {
		if start < 0 || end > 24 || start >= end {
			return fmt.Errorf("%w: [%d,%d)", ErrInvalidHour, start, end)
		}
		f.add("time_frame", func(r *model.PhotoRecord) bool {
			h := r.Hour()
			return h >= start && h < end
		})
		return nil
	}
}

// DateRange keeps records with from <= timestamp < to.
func DateRange(from, to time.Time) Option {
	return func(f *Filter) error {
		if !from.Before(to) {
			return fmt.Errorf("%w: %s >= %s", ErrInvalidDateRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
		}
		f.add("date_range", func(r *model.PhotoRecord) bool {
			return !r.Timestamp.Before(from) && r.Timestamp.Before(to)
		})
		return nil
	}
}

// FullMoonOnly keeps records near one of the full moon reference dates.
func FullMoonOnly(refs []time.Time) Option {
	return MoonWithin(lunar.FullMoon, refs, lunar.DefaultWindowDays)
}

// NewMoonOnly keeps records near one of the new moon reference dates.
func NewMoonOnly(refs []time.Time) Option {
	return MoonWithin(lunar.NewMoon, refs, lunar.DefaultWindowDays)
}

// MoonWithin keeps records within days of a reference phase date.
func MoonWithin(phase lunar.Phase, refs []time.Time, days int) Option {
	return func(f *Filter) error {
		if days < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidWindow, days)
		}
		dates := slices.Clone(refs)
		f.add(phase.String()+"_moon", func(r *model.PhotoRecord) bool {
			return lunar.IsNearPhase(r.Timestamp, dates, days)
		})
		return nil
	}
}
