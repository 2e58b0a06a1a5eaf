// Package config defines process configuration and how it is loaded.
//
// Conventions:
//   - New returns a Config filled with defaults.
//   - Load layers a YAML file and CAMTRAP_* environment variables on top.
//   - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/camtrap/internal/domain/lunar"
	"github.com/okian/camtrap/internal/domain/segment"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// EventIntervalMinutes is the gap that separates two independent events.
	EventIntervalMinutes int `koanf:"event_interval_minutes"`

	// MoonWindowDays is the +/- day radius around a reference moon phase.
	MoonWindowDays int `koanf:"moon_window_days"`

	// Grouping is "location" or "pooled"; see segment.Grouping.
	Grouping string `koanf:"grouping"`

	// WorkerCount sets the number of per-species analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// CacheTTLSeconds bounds how long filtered subsequences are reused.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// MinPicturesForSimilarity is the picture count a species needs before
	// its activity pattern is compared with others.
	MinPicturesForSimilarity int `koanf:"min_pictures_for_similarity"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after each run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		EventIntervalMinutes:     60,
		MoonWindowDays:           lunar.DefaultWindowDays,
		Grouping:                 segment.PerLocation.String(),
		WorkerCount:              runtime.NumCPU(),
		QueueSize:                1024,
		CacheTTLSeconds:          300,
		MinPicturesForSimilarity: 25,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.EventIntervalMinutes <= 0:
		return fmt.Errorf("%w: event_interval_minutes must be positive, got %d", ErrInvalidConfig, c.EventIntervalMinutes)
	case c.MoonWindowDays < 0:
		return fmt.Errorf("%w: moon_window_days must not be negative, got %d", ErrInvalidConfig, c.MoonWindowDays)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1, got %d", ErrInvalidConfig, c.QueueSize)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative, got %d", ErrInvalidConfig, c.CacheTTLSeconds)
	case c.MinPicturesForSimilarity < 1:
		return fmt.Errorf("%w: min_pictures_for_similarity must be at least 1, got %d", ErrInvalidConfig, c.MinPicturesForSimilarity)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := segment.ParseGrouping(c.Grouping); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SegmentGrouping returns the parsed grouping key.
func (c *Config) SegmentGrouping() segment.Grouping {
	g, err := segment.ParseGrouping(c.Grouping)
	if err != nil {
		return segment.PerLocation
	}
	return g
}

// CacheTTL returns the subsequence cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
