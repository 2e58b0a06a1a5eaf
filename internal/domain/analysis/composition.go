package analysis

import (
	"cmp"
	"slices"

	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
)

// SpeciesAt returns the distinct species recorded at a location, sorted by name.
func SpeciesAt(records []model.PhotoRecord, locationID string) []model.Species {
	return distinctSpecies(query.MustNew(query.LocationIDOnly(locationID)).Query(records))
}

// Richness is the number of distinct species in records.
func Richness(records []model.PhotoRecord) int {
	return len(distinctSpecies(records))
}

// Jaccard returns |a ∩ b| / |a ∪ b| for two species sets. Two empty sets give 0.
func Jaccard(a, b []model.Species) float64 {
	inA := make(map[string]struct{}, len(a))
	for _, sp := range a {
		inA[sp.Key()] = struct{}{}
	}
	union := len(inA)
	shared := 0
	seenB := make(map[string]struct{}, len(b))
	for _, sp := range b {
		k := sp.Key()
		if _, dup := seenB[k]; dup {
			continue
		}
		seenB[k] = struct{}{}
		if _, ok := inA[k]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// LocationPair holds the composition similarity of two locations.
type LocationPair struct {
	A, B       string
	Similarity float64
}

// LocationSimilarity compares the species composition of every pair of
// summarized locations, in summary order.
func LocationSimilarity(s Summary) []LocationPair {
	species := make([][]model.Species, len(s.Locations))
	for i, l := range s.Locations {
		species[i] = SpeciesAt(s.Records, l.ID)
	}
	var out []LocationPair
	for i := 0; i < len(s.Locations); i++ {
		for j := i + 1; j < len(s.Locations); j++ {
			out = append(out, LocationPair{
				A:          s.Locations[i].ID,
				B:          s.Locations[j].ID,
				Similarity: Jaccard(species[i], species[j]),
			})
		}
	}
	return out
}

func distinctSpecies(records []model.PhotoRecord) []model.Species {
	seen := make(map[string]struct{})
	var out []model.Species
	for i := range records {
		for _, e := range records[i].Species {
			if _, ok := seen[e.Species.Key()]; ok {
				continue
			}
			seen[e.Species.Key()] = struct{}{}
			out = append(out, e.Species)
		}
	}
	slices.SortFunc(out, func(a, b model.Species) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ScientificName, b.ScientificName))
	})
	return out
}

// SpeciesPairCount is the number of locations where both species were recorded.
type SpeciesPairCount struct {
	A, B      model.Species
	Locations int
}

// CoOccurrence returns every species pair of s, in summary order, with the
// number of locations where both were recorded. Records without a location
// are ignored.
func CoOccurrence(s Summary) []SpeciesPairCount {
	present := presence(s)
	var out []SpeciesPairCount
	for i := 0; i < len(s.Species); i++ {
		at := present[s.Species[i].Key()]
		for j := i + 1; j < len(s.Species); j++ {
			n := 0
			for id := range present[s.Species[j].Key()] {
				if _, ok := at[id]; ok {
					n++
				}
			}
			out = append(out, SpeciesPairCount{A: s.Species[i], B: s.Species[j], Locations: n})
		}
	}
	return out
}

// Occupancy is the share of summarized locations where a species was recorded.
type Occupancy struct {
	Species   model.Species
	Locations int
	Fraction  float64
}

// NaiveOccupancy returns the occupancy of every species of s, uncorrected for
// detection probability. Fraction is 0 when s has no locations.
func NaiveOccupancy(s Summary) []Occupancy {
	present := presence(s)
	out := make([]Occupancy, 0, len(s.Species))
	for _, sp := range s.Species {
		o := Occupancy{Species: sp, Locations: len(present[sp.Key()])}
		if len(s.Locations) > 0 {
			o.Fraction = float64(o.Locations) / float64(len(s.Locations))
		}
		out = append(out, o)
	}
	return out
}

// ElevationSpan is where along the elevation gradient a species was recorded.
type ElevationSpan struct {
	Min, Max  float64
	Locations []string // IDs, lowest first; ties by ID
}

// ElevationRange returns the elevation span of the locations where sp was
// recorded. ok is false when sp was never recorded at a known location.
func ElevationRange(s Summary, sp model.Species) (span ElevationSpan, ok bool) {
	at := presence(s)[sp.Key()]
	var locs []model.Location
	for _, l := range s.Locations {
		if _, hit := at[l.ID]; hit {
			locs = append(locs, l)
		}
	}
	if len(locs) == 0 {
		return ElevationSpan{}, false
	}
	slices.SortFunc(locs, func(a, b model.Location) int {
		return cmp.Or(cmp.Compare(a.ElevationMeters, b.ElevationMeters), cmp.Compare(a.ID, b.ID))
	})
	span.Min, span.Max = locs[0].ElevationMeters, locs[len(locs)-1].ElevationMeters
	for _, l := range locs {
		span.Locations = append(span.Locations, l.ID)
	}
	return span, true
}

// presence maps species keys to the set of location IDs they were recorded at.
func presence(s Summary) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(s.Species))
	for i := range s.Records {
		r := &s.Records[i]
		if !r.HasLocation() {
			continue
		}
		for _, e := range r.Species {
			k := e.Species.Key()
			if out[k] == nil {
				out[k] = make(map[string]struct{})
			}
			out[k][r.LocationID] = struct{}{}
		}
	}
	return out
}
