package synth

import (
	"fmt"
	"time"
)

// Config describes the synthetic study to generate.
type Config struct {
	Seed      uint64    // same seed, same dataset
	Locations int       // number of camera sites
	Species   int       // number of species, at most len(Catalog)
	Start     time.Time // first deployment day (UTC)
	Days      int       // deployment length
	Visits    float64   // mean visits per species per site per day
	Latitude  float64   // centre of the study area
	Longitude float64
	SpreadKm  float64 // sites are scattered within this radius
}

// DefaultConfig returns a modest study: 6 sites, 5 species, 120 days.
func DefaultConfig() Config {
	return Config{
		Seed:      1,
		Locations: 6,
		Species:   5,
		Start:     time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:      120,
		Visits:    0.3,
		Latitude:  44.6,
		Longitude: -110.5,
		SpreadKm:  5,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Locations < 1:
		return fmt.Errorf("%w: locations must be at least 1", ErrInvalidConfig)
	case c.Species < 1 || c.Species > len(Catalog):
		return fmt.Errorf("%w: species must be in [1,%d]", ErrInvalidConfig, len(Catalog))
	case c.Days < 1:
		return fmt.Errorf("%w: days must be at least 1", ErrInvalidConfig)
	case c.Visits <= 0:
		return fmt.Errorf("%w: visits must be positive", ErrInvalidConfig)
	case c.Latitude < -80 || c.Latitude > 80:
		return fmt.Errorf("%w: latitude must be in [-80,80]", ErrInvalidConfig)
	case c.Longitude < -179 || c.Longitude > 179:
		return fmt.Errorf("%w: longitude must be in [-179,179]", ErrInvalidConfig)
	case c.SpreadKm < 0 || c.SpreadKm > 50:
		return fmt.Errorf("%w: spread must be in [0,50] km", ErrInvalidConfig)
	case c.Start.IsZero():
		return fmt.Errorf("%w: start is required", ErrInvalidConfig)
	}
	return nil
}
