// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Coordinate bounds accepted for a camera location.
const (
	MaxLatitude  = 85.0
	MaxLongitude = 180.0
)

// Species identifies an animal by common and scientific name.
// Two values are the same species when both names match.
type Species struct {
	Name           string
	ScientificName string
}

// Key returns a stable map key for the species.
func (s Species) Key() string {
	return s.Name + "\x00" + s.ScientificName
}

// Equal reports whether both names match.
func (s Species) Equal(other Species) bool {
	return s.Name == other.Name && s.ScientificName == other.ScientificName
}

func (s Species) String() string {
	if s.ScientificName == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ScientificName)
}

// SpeciesEntry is one tagged species on a photo with the number of individuals seen.
type SpeciesEntry struct {
	Species Species
	Count   int
}

// Location is a camera trap site. Identity is by ID only.
type Location struct {
	ID              string
	Name            string
	Latitude        float64
	Longitude       float64
	ElevationMeters float64
}

// Validate checks the coordinate ranges of the location.
func (l Location) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidLocation)
	}
	if l.Latitude < -MaxLatitude || l.Latitude > MaxLatitude {
		return fmt.Errorf("%w: latitude %.6f outside [-%g,%g]", ErrInvalidLocation, l.Latitude, MaxLatitude, MaxLatitude)
	}
	if l.Longitude < -MaxLongitude || l.Longitude > MaxLongitude {
		return fmt.Errorf("%w: longitude %.6f outside [-%g,%g]", ErrInvalidLocation, l.Longitude, MaxLongitude, MaxLongitude)
	}
	return nil
}

// PhotoRecord is a single timestamped camera trap photo.
// An empty LocationID means the location is unknown.
type PhotoRecord struct {
	Timestamp  time.Time
	LocationID string
	Species    []SpeciesEntry
	Source     string // opaque file reference, unused by the engine
}

// HasLocation reports whether the record is tied to a known location.
func (r PhotoRecord) HasLocation() bool {
	return r.LocationID != ""
}

// HasSpecies reports whether any entry on the record matches sp.
func (r PhotoRecord) HasSpecies(sp Species) bool {
	for _, e := range r.Species {
		if e.Species.Equal(sp) {
			return true
		}
	}
	return false
}

// CountFor returns the largest count tagged for sp on this record.
func (r PhotoRecord) CountFor(sp Species) int {
	best := 0
	for _, e := range r.Species {
		if e.Species.Equal(sp) && e.Count > best {
			best = e.Count
		}
	}
	return best
}

// TotalCount sums the counts of every entry on the record.
func (r PhotoRecord) TotalCount() int {
	total := 0
	for _, e := range r.Species {
		total += e.Count
	}
	return total
}

// Hour returns the wall-clock hour of the photo.
func (r PhotoRecord) Hour() int {
	return r.Timestamp.Hour()
}

// UTMCoordinate is a position in the Universal Transverse Mercator grid.
type UTMCoordinate struct {
	Easting  float64
	Northing float64
	Zone     int
	Band     byte
}

func (c UTMCoordinate) String() string {
	return fmt.Sprintf("%d%c %.0fE %.0fN", c.Zone, c.Band, c.Easting, c.Northing)
}
