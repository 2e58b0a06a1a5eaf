// Package analysis composes the record filter, the event segmenter and the
// effort calculator into the statistics consumed by reports.
//
// Everything here is a pure function of its inputs. A Summary is computed once
// per analysis run and passed explicitly to the functions that need it.
package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/model"
)

// Summary enumerates what a record set contains.
type Summary struct {
	// Species sorted by name, then scientific name.
	Species []model.Species
	// Locations referenced by at least one record, sorted by name.
	Locations []model.Location
	// Years with at least one record, ascending.
	Years []int
	// Records sorted ascending by timestamp; ties keep input order.
	Records []model.PhotoRecord
	// UnknownLocation is set when any record has no location.
	UnknownLocation bool
}

// Summarize builds a Summary. catalog supplies location details; IDs missing
// from it are reported with the ID as the name.
func Summarize(records []model.PhotoRecord, catalog []model.Location) Summary {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.PhotoRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	known := make(map[string]model.Location, len(catalog))
	for _, l := range catalog {
		known[l.ID] = l
	}

	s := Summary{Records: sorted}
	seenSpecies := make(map[string]struct{})
	seenLocations := make(map[string]struct{})
	seenYears := make(map[int]struct{})

	for i := range sorted {
		r := &sorted[i]
		for _, e := range r.Species {
			k := e.Species.Key()
			if _, ok := seenSpecies[k]; !ok {
				seenSpecies[k] = struct{}{}
				s.Species = append(s.Species, e.Species)
			}
		}
		if !r.HasLocation() {
			s.UnknownLocation = true
		} else if _, ok := seenLocations[r.LocationID]; !ok {
			seenLocations[r.LocationID] = struct{}{}
			loc, ok := known[r.LocationID]
			if !ok {
				loc = model.Location{ID: r.LocationID, Name: r.LocationID}
			}
			s.Locations = append(s.Locations, loc)
		}
		if y := r.Timestamp.Year(); !hasYear(seenYears, y) {
			seenYears[y] = struct{}{}
			s.Years = append(s.Years, y)
		}
	}

	slices.SortFunc(s.Species, func(a, b model.Species) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ScientificName, b.ScientificName))
	})
	slices.SortFunc(s.Locations, func(a, b model.Location) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	slices.Sort(s.Years)
	return s
}

func hasYear(set map[int]struct{}, y int) bool {
	_, ok := set[y]
	return ok
}

// Location looks up a summarized location by ID.
func (s Summary) Location(id string) (model.Location, bool) {
	for _, l := range s.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return model.Location{}, false
}

// Span returns the first and last timestamps. ok is false for an empty set.
func (s Summary) Span() (first, last time.Time, ok bool) {
	if len(s.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Records[0].Timestamp, s.Records[len(s.Records)-1].Timestamp, true
}

// StudyDays is the inclusive day span of the whole record set.
func (s Summary) StudyDays() int {
	return effort.TrapDays(s.Records)
}
