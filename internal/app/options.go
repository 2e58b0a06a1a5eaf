package service

import (
	"time"

	"github.com/okian/camtrap/internal/domain/segment"
	"github.com/okian/camtrap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of species workers per run.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the job queue bound.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventInterval sets the independent event interval in minutes.
// Non-positive values are kept so that Analyze reports them.
func WithEventInterval(minutes int) Option {
	return func(s *Service) {
		s.intervalMinutes = minutes
	}
}

// WithGrouping selects per-location or pooled periods. Unknown values are
// kept so that Analyze reports them.
func WithGrouping(g segment.Grouping) Option {
	return func(s *Service) {
		s.grouping = g
	}
}

// WithMoonWindowDays sets the moon phase window radius. Negative values are
// kept so that Analyze reports them.
func WithMoonWindowDays(days int) Option {
	return func(s *Service) {
		s.moonWindowDays = days
	}
}

// WithWindow restricts Analyze to records with from <= timestamp < to.
// A zero to leaves the window open-ended; a window that is not ordered is
// reported by Analyze.
func WithWindow(from, to time.Time) Option {
	return func(s *Service) {
		s.from, s.to = from, to
	}
}

// WithCacheTTL bounds the lifetime of cached record subsets. Zero keeps
// them for the whole run.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMinPictures sets how many pictures a species needs before it takes
// part in the activity similarity search.
func WithMinPictures(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minPictures = n
		}
	}
}

// WithClock overrides the clock used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
