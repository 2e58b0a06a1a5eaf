package analysis

import (
	"time"

	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
	"github.com/okian/camtrap/internal/domain/segment"
)

const hoursPerDay = 24

// Engine computes period based statistics for one event interval.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	grouping segment.Grouping
	moonDays int
	seg      *segment.Segmenter
}

// New returns an Engine segmenting with intervalMinutes.
func New(intervalMinutes int, opts ...Option) (*Engine, error) {
	e := &Engine{
		grouping: segment.PerLocation,
		moonDays: lunar.DefaultWindowDays,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	seg, err := segment.New(intervalMinutes, segment.WithGrouping(e.grouping))
	if err != nil {
		return nil, err
	}
	e.seg = seg
	e.grouping = seg.Grouping()
	return e, nil
}

// Segmenter exposes the underlying segmenter.
func (e *Engine) Segmenter() *segment.Segmenter { return e.seg }

// Grouping returns the grouping used for periods.
func (e *Engine) Grouping() segment.Grouping { return e.grouping }

// MoonWindowDays returns the moon phase window radius.
func (e *Engine) MoonWindowDays() int { return e.moonDays }

// Periods returns the periods of sp in sorted records.
func (e *Engine) Periods(records []model.PhotoRecord, sp model.Species) []segment.Period {
	return e.seg.Periods(speciesOnly(sp).Query(records))
}

// PeriodCount returns the number of independent events of sp.
func (e *Engine) PeriodCount(records []model.PhotoRecord, sp model.Species) int {
	return e.seg.Count(speciesOnly(sp).Query(records))
}

// PeriodCountAt returns the number of independent events of sp at one location.
func (e *Engine) PeriodCountAt(records []model.PhotoRecord, sp model.Species, locationID string) int {
	f := query.MustNew(query.SpeciesOnly(sp), query.LocationIDOnly(locationID))
	return e.seg.Count(f.Query(records))
}

// ActivityCount returns the number of independent events of sp whose records
// fall within hours [start, end).
func (e *Engine) ActivityCount(records []model.PhotoRecord, sp model.Species, start, end int) (int, error) {
	f, err := query.New(query.SpeciesOnly(sp), query.TimeFrame(start, end))
	if err != nil {
		return 0, err
	}
	return e.seg.Count(f.Query(records)), nil
}

// HourlyActivity returns the activity count of sp for each hour of the day.
func (e *Engine) HourlyActivity(records []model.PhotoRecord, sp model.Species) [hoursPerDay]int {
	return e.hourly(speciesOnly(sp).Query(records))
}

func (e *Engine) hourly(records []model.PhotoRecord) [hoursPerDay]int {
	var out [hoursPerDay]int
	for h := 0; h < hoursPerDay; h++ {
		out[h] = e.seg.Count(query.MustNew(query.TimeFrame(h, h+1)).Query(records))
	}
	return out
}

// Abundance sums the largest per-record count of sp over its periods.
func (e *Engine) Abundance(records []model.PhotoRecord, sp model.Species) int {
	return e.seg.Abundance(speciesOnly(sp).Query(records), sp)
}

// AbundanceAny is Abundance over all species, used for overall totals.
func (e *Engine) AbundanceAny(records []model.PhotoRecord) int {
	return e.seg.AbundanceAny(query.MustNew(query.AnySpeciesPresent()).Query(records))
}

// DetectionRate returns periods of sp per 100 camera days at one location in
// year, optionally restricted to month (effort.AllMonths for the whole year).
// Effort is measured over every record at the location, not only those of sp.
func (e *Engine) DetectionRate(records []model.PhotoRecord, sp model.Species, locationID string, year int, month time.Month) (float64, error) {
	atLocation := query.MustNew(query.LocationIDOnly(locationID), query.YearOnly(year))
	days, err := effort.DaysOfOperation(atLocation.Query(records), year, month)
	if err != nil {
		return 0, err
	}

	opts := []query.Option{query.SpeciesOnly(sp)}
	if month != effort.AllMonths {
		opts = append(opts, query.MonthOnly(month))
	}
	events, err := atLocation.With(opts...)
	if err != nil {
		return 0, err
	}
	return effort.DetectionRate(e.seg.Count(events.Query(records)), days), nil
}

// MoonPeriodCount returns the periods of sp near a reference moon phase.
func (e *Engine) MoonPeriodCount(records []model.PhotoRecord, sp model.Species, phase lunar.Phase, refs []time.Time) int {
	f := query.MustNew(query.SpeciesOnly(sp), query.MoonWithin(phase, refs, e.moonDays))
	return e.seg.Count(f.Query(records))
}

// LunarPattern compares hourly pictures of one species near full and new moons.
type LunarPattern struct {
	Full       [hoursPerDay]int
	New        [hoursPerDay]int
	Difference float64
}

// LunarActivity builds the hourly picture pattern of sp around full and new
// moons. Difference is the distance between the two frequency patterns.
func (e *Engine) LunarActivity(records []model.PhotoRecord, sp model.Species, fullMoons, newMoons []time.Time) LunarPattern {
	withSpecies := speciesOnly(sp).Query(records)
	full := query.MustNew(query.MoonWithin(lunar.FullMoon, fullMoons, e.moonDays)).Query(withSpecies)
	nw := query.MustNew(query.MoonWithin(lunar.NewMoon, newMoons, e.moonDays)).Query(withSpecies)

	p := LunarPattern{Full: hourlyPictures(full), New: hourlyPictures(nw)}
	p.Difference = ActivitySimilarity(p.Full, p.New)
	return p
}

func speciesOnly(sp model.Species) *query.Filter {
	return query.MustNew(query.SpeciesOnly(sp))
}
