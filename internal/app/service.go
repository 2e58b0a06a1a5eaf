// Package service runs a full analysis of a camera trap dataset. Species are
// analysed concurrently by a worker pool fed from an in-memory job queue;
// locations, effort and cross-species statistics are computed afterwards.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/camtrap/internal/adapters/dataset"
	"github.com/okian/camtrap/internal/adapters/mq/queue"
	"github.com/okian/camtrap/internal/adapters/mq/worker"
	"github.com/okian/camtrap/internal/adapters/repository"
	"github.com/okian/camtrap/internal/domain/analysis"
	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/geodesy"
	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
	"github.com/okian/camtrap/internal/domain/segment"
	"github.com/okian/camtrap/pkg/logger"
	"github.com/okian/camtrap/pkg/metrics"
)

// Default run configuration.
const (
	defaultIntervalMinutes = 60
	defaultQueueSize       = 1024
	defaultCacheTTL        = 5 * time.Minute
	activityConfidence     = 0.95
)

// openEnd closes a window without an upper bound.
var openEnd = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Service analyses datasets. It holds configuration only and is safe for
// concurrent use; every Analyze call builds its own queue, pool and store.
type Service struct {
	workerCount     int
	queueSize       int
	intervalMinutes int
	grouping        segment.Grouping
	moonWindowDays  int
	cacheTTL        time.Duration
	minPictures     int
	from, to        time.Time
	now             func() time.Time

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       defaultQueueSize,
		intervalMinutes: defaultIntervalMinutes,
		grouping:        segment.PerLocation,
		moonWindowDays:  lunar.DefaultWindowDays,
		cacheTTL:        defaultCacheTTL,
		minPictures:     analysis.DefaultMinPictures,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Analyze computes the full report for ds.
func (s *Service) Analyze(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	start := time.Now()
	runID := uuid.NewString()
	runField := logger.String("run_id", runID)

	engine, err := analysis.New(s.intervalMinutes,
		analysis.WithGrouping(s.grouping),
		analysis.WithMoonWindowDays(s.moonWindowDays),
	)
	if err != nil {
		metrics.RecordErrorByComponent("service", "invalid_setting")
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}

	records, err := s.window(ds.Records)
	if err != nil {
		metrics.RecordErrorByComponent("service", "invalid_setting")
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}

	summary := analysis.Summarize(records, ds.Locations)
	sub := newSubsets(summary.Records, s.cacheTTL)
	store := repository.NewMemoryStore()
	h := newSpeciesHandler(engine, summary, ds, sub, store)

	s.logger.Info(ctx, "analysis started", runField,
		logger.Int("records", len(summary.Records)),
		logger.Int("species", len(summary.Species)),
		logger.Int("locations", len(ds.Locations)),
	)

	if err := s.runSpecies(ctx, runID, summary.Species, h); err != nil {
		s.logger.Error(ctx, "analysis failed", runField, logger.Error(err))
		metrics.RecordErrorByComponent("service", "species")
		return nil, err
	}

	rep := &Report{
		RunID:       runID,
		GeneratedAt: s.now().UTC(),
		Settings: Settings{
			EventIntervalMinutes: s.intervalMinutes,
			Grouping:             engine.Grouping().String(),
			MoonWindowDays:       engine.MoonWindowDays(),
			MinPictures:          s.minPictures,
			From:                 s.from,
			To:                   s.to,
		},
		Records:      len(summary.Records),
		StudyDays:    summary.StudyDays(),
		Richness:     len(summary.Species),
		AbundanceAny: engine.AbundanceAny(summary.Records),
	}
	if first, last, ok := summary.Span(); ok {
		rep.FirstRecord, rep.LastRecord = first, last
	}
	for i := range summary.Records {
		if !summary.Records[i].HasLocation() {
			rep.UnlocatedRecords++
		}
	}

	s.collectSpecies(ctx, rep, h, store)
	s.collectLocations(ctx, rep, ds, summary, sub)
	if err := s.collectStudy(ctx, rep, summary); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordAnalysisRun(elapsed.Seconds())
	s.logger.Info(ctx, "analysis finished", runField,
		logger.Duration("elapsed", elapsed),
		logger.Int("periods", rep.TotalPeriods),
		logger.Int("cached_subsets", sub.size()),
	)
	return rep, nil
}

// window returns the records inside the configured date window.
func (s *Service) window(records []model.PhotoRecord) ([]model.PhotoRecord, error) {
	if s.from.IsZero() && s.to.IsZero() {
		return records, nil
	}
	to := s.to
	if to.IsZero() {
		to = openEnd
	}
	f, err := query.New(query.DateRange(s.from, to))
	if err != nil {
		return nil, err
	}
	return f.Query(records), nil
}

// runSpecies fans one job per species out to a worker pool and waits for it to drain.
func (s *Service) runSpecies(ctx context.Context, runID string, species []model.Species, h *speciesHandler) error {
	if len(species) == 0 {
		return nil
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(min(s.workerCount, len(species)), q, h, worker.WithLogger(s.logger))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(runCtx)

	for i, sp := range species {
		job := queue.Job{ID: fmt.Sprintf("%s/%d", runID, i), RunID: runID, Species: sp}
		if err := q.Submit(runCtx, job); err != nil {
			cancel()
			if serr := pool.Shutdown(context.WithoutCancel(ctx)); serr != nil {
				s.logger.Warn(ctx, "pool shutdown", logger.Error(serr))
			}
			return fmt.Errorf("submit %s: %w", sp, err)
		}
	}
	if err := q.Close(); err != nil {
		return err
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := h.err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpeciesFailed, err)
	}
	return nil
}

func (s *Service) collectSpecies(ctx context.Context, rep *Report, h *speciesHandler, store repository.Store) {
	ranking := store.All(ctx)
	for _, e := range ranking {
		rep.TotalPeriods += e.Periods
	}
	rep.Species = make([]SpeciesReport, 0, len(ranking))
	for _, e := range ranking {
		sr, ok := h.report(e.Species.Key())
		if !ok {
			continue
		}
		sr.Rank = e.Rank
		sr.Proportion = analysis.VisitationProportion(e.Periods, rep.TotalPeriods)
		rep.Species = append(rep.Species, sr)
	}
}

func (s *Service) collectLocations(ctx context.Context, rep *Report, ds *dataset.Dataset, summary analysis.Summary, sub *subsets) {
	catalog := slices.Clone(ds.Locations)
	for _, l := range summary.Locations {
		if _, ok := ds.Location(l.ID); !ok {
			catalog = append(catalog, l)
		}
	}

	rep.Locations = make([]LocationReport, 0, len(catalog))
	for _, loc := range catalog {
		recs := sub.location(loc.ID)
		lr := LocationReport{
			ID:        loc.ID,
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Pictures:  len(recs),
			TrapDays:  effort.TrapDays(recs),
			Richness:  analysis.Richness(recs),
		}
		for i := range recs {
			lr.Individuals += recs[i].TotalCount()
		}
		if c, err := geodesy.ToUTM(loc.Latitude, loc.Longitude); err == nil {
			lr.UTM = c.String()
		} else {
			s.logger.Warn(ctx, "no UTM coordinate", logger.String("location", loc.ID), logger.Error(err))
		}
		for _, y := range summary.Years {
			ye := YearEffort{Year: y, Months: effort.MonthlyDays(recs, y)}
			for _, d := range ye.Months {
				ye.Total += d
			}
			if ye.Total > 0 {
				lr.Effort = append(lr.Effort, ye)
			}
		}
		rep.TrapDays += lr.TrapDays
		rep.Locations = append(rep.Locations, lr)
	}

	for i := 0; i < len(catalog); i++ {
		for j := i + 1; j < len(catalog); j++ {
			a, b := catalog[i], catalog[j]
			rep.LocationDistances = append(rep.LocationDistances, LocationDistance{
				A:              a.ID,
				B:              b.ID,
				Km:             geodesy.Distance(a, b),
				ElevationDiffM: math.Abs(a.ElevationMeters - b.ElevationMeters),
			})
		}
	}

	area, err := geodesy.TrapArea(catalog)
	if err != nil {
		s.logger.Warn(ctx, "trap area unavailable", logger.Error(err))
	}
	rep.TrapAreaKm2 = area
}

func (s *Service) collectStudy(ctx context.Context, rep *Report, summary analysis.Summary) error {
	for _, season := range analysis.Seasons {
		days, err := analysis.SeasonalEffort(summary, season)
		if err != nil {
			return err
		}
		rep.SeasonalTrapDays = append(rep.SeasonalTrapDays, Seasonal{Season: season.Name, Value: days})
	}

	if pair, ok := analysis.MostSimilarPair(summary, s.minPictures); ok {
		sp := &SimilarPair{A: pair.A.String(), B: pair.B.String(), Distance: pair.Distance}
		a := analysis.HourlyPictures(summary.Records, pair.A)
		b := analysis.HourlyPictures(summary.Records, pair.B)
		same, chi, err := analysis.ActivityPatternsMatch(a, b, activityConfidence)
		if err != nil {
			s.logger.Warn(ctx, "activity test skipped", logger.Error(err))
		} else {
			sp.SamePattern, sp.ChiSquare = same, chi
		}
		rep.MostSimilar = sp
	}

	for _, p := range analysis.LocationSimilarity(summary) {
		rep.LocationSimilarity = append(rep.LocationSimilarity, LocationPair{A: p.A, B: p.B, Similarity: p.Similarity})
	}
	for _, c := range analysis.CoOccurrence(summary) {
		rep.CoOccurrence = append(rep.CoOccurrence, CoOccurrence{A: c.A.String(), B: c.B.String(), Locations: c.Locations})
	}
	for _, o := range analysis.NaiveOccupancy(summary) {
		rep.Occupancy = append(rep.Occupancy, Occupancy{Species: o.Species.String(), Locations: o.Locations, Fraction: o.Fraction})
	}
	for _, n := range analysis.SpeciesAccumulation(summary) {
		rep.Accumulation = append(rep.Accumulation, Accumulation{Day: n.Day, Date: n.Date, Species: n.Species.String()})
	}
	return nil
}
