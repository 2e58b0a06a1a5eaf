package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/camtrap/internal/adapters/dataset"
	"github.com/okian/camtrap/internal/adapters/mq/queue"
	"github.com/okian/camtrap/internal/adapters/repository"
	"github.com/okian/camtrap/internal/domain/analysis"
	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
	"github.com/okian/camtrap/pkg/metrics"
)

// speciesHandler computes one SpeciesReport per job.
type speciesHandler struct {
	engine    *analysis.Engine
	summary   analysis.Summary
	ds        *dataset.Dataset
	subsets   *subsets
	store     repository.Store
	sightings map[string]analysis.Sighting

	mu      sync.Mutex
	reports map[string]SpeciesReport
	errs    []error
}

func newSpeciesHandler(engine *analysis.Engine, summary analysis.Summary, ds *dataset.Dataset, sub *subsets, store repository.Store) *speciesHandler {
	h := &speciesHandler{
		engine:    engine,
		summary:   summary,
		ds:        ds,
		subsets:   sub,
		store:     store,
		sightings: make(map[string]analysis.Sighting, len(summary.Species)),
		reports:   make(map[string]SpeciesReport, len(summary.Species)),
	}
	for _, st := range analysis.Sightings(summary) {
		h.sightings[st.Species.Key()] = st
	}
	return h
}

// Handle implements worker.Handler.
func (h *speciesHandler) Handle(ctx context.Context, j queue.Job) error {
	err := h.handle(ctx, j)
	if err != nil {
		h.mu.Lock()
		h.errs = append(h.errs, err)
		h.mu.Unlock()
	}
	return err
}

func (h *speciesHandler) handle(ctx context.Context, j queue.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sp := j.Species
	recs := h.subsets.species(sp)

	rep := SpeciesReport{
		Name:           sp.Name,
		ScientificName: sp.ScientificName,
		Pictures:       len(recs),
		Periods:        h.engine.PeriodCount(recs, sp),
		Abundance:      h.engine.Abundance(recs, sp),
		HourlyPeriods:  h.engine.HourlyActivity(recs, sp),
	}

	if st, ok := h.sightings[sp.Key()]; ok {
		rep.FirstSeen, rep.FirstLocation = st.First, st.FirstLocation
		rep.LastSeen, rep.LastLocation = st.Last, st.LastLocation
	}

	for _, loc := range h.summary.Locations {
		if n := h.engine.PeriodCountAt(h.subsets.location(loc.ID), sp, loc.ID); n > 0 {
			if rep.PeriodsByLocation == nil {
				rep.PeriodsByLocation = make(map[string]int)
			}
			rep.PeriodsByLocation[loc.ID] = n
		}
	}

	rates, err := h.detectionRates(sp)
	if err != nil {
		return err
	}
	rep.DetectionRates = rates
	if span, ok := analysis.ElevationRange(h.summary, sp); ok {
		rep.Elevation = &Elevation{MinMeters: span.Min, MaxMeters: span.Max, Locations: span.Locations}
	}

	for _, season := range analysis.Seasons {
		n, err := h.engine.SeasonalPeriods(recs, sp, season)
		if err != nil {
			return err
		}
		rep.SeasonalPeriods = append(rep.SeasonalPeriods, Seasonal{Season: season.Name, Value: n})
	}

	rep.FullMoonPeriods = h.engine.MoonPeriodCount(recs, sp, lunar.FullMoon, h.ds.FullMoons)
	rep.NewMoonPeriods = h.engine.MoonPeriodCount(recs, sp, lunar.NewMoon, h.ds.NewMoons)
	rep.LunarDifference = h.engine.LunarActivity(recs, sp, h.ds.FullMoons, h.ds.NewMoons).Difference

	if err := h.store.Upsert(ctx, repository.Entry{
		Species:   sp,
		Periods:   rep.Periods,
		Abundance: rep.Abundance,
		Pictures:  rep.Pictures,
	}); err != nil {
		return err
	}

	h.mu.Lock()
	h.reports[sp.Key()] = rep
	h.mu.Unlock()
	metrics.RecordSpeciesAnalyzed()
	return nil
}

// detectionRates returns the rate of sp for every location and year with
// camera effort, including those where sp was never recorded.
func (h *speciesHandler) detectionRates(sp model.Species) ([]DetectionRate, error) {
	var out []DetectionRate
	for _, loc := range h.summary.Locations {
		atLocation := h.subsets.location(loc.ID)
		for _, y := range h.summary.Years {
			inYear := query.MustNew(query.YearOnly(y)).Query(atLocation)
			days, err := effort.DaysOfOperation(inYear, y, effort.AllMonths)
			if err != nil {
				return nil, err
			}
			if days == 0 {
				continue
			}
			dr := DetectionRate{
				Location: loc.ID,
				Year:     y,
				Days:     days,
				Periods:  h.engine.PeriodCount(inYear, sp),
			}
			if dr.Rate, err = h.engine.DetectionRate(atLocation, sp, loc.ID, y, effort.AllMonths); err != nil {
				return nil, err
			}
			for m := time.January; m <= time.December; m++ {
				if dr.Monthly[m-1], err = h.engine.DetectionRate(atLocation, sp, loc.ID, y, m); err != nil {
					return nil, err
				}
			}
			out = append(out, dr)
		}
	}
	return out, nil
}

func (h *speciesHandler) err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return errors.Join(h.errs...)
}

func (h *speciesHandler) report(key string) (SpeciesReport, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.reports[key]
	return r, ok
}
