package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/okian/camtrap/internal/domain/model"
)

// Sighting is the first and last time a species was photographed.
type Sighting struct {
	Species       model.Species
	First         time.Time
	FirstLocation string
	Last          time.Time
	LastLocation  string
	Pictures      int
}

// Sightings returns one entry per summarized species, in summary order.
func Sightings(s Summary) []Sighting {
	byKey := make(map[string]*Sighting, len(s.Species))
	out := make([]Sighting, len(s.Species))
	for i, sp := range s.Species {
		out[i].Species = sp
		byKey[sp.Key()] = &out[i]
	}

	for i := range s.Records {
		r := &s.Records[i]
		for _, sp := range recordSpecies(r) {
			st := byKey[sp.Key()]
			if st == nil {
				continue
			}
			if st.Pictures == 0 {
				st.First, st.FirstLocation = r.Timestamp, r.LocationID
			}
			st.Last, st.LastLocation = r.Timestamp, r.LocationID
			st.Pictures++
		}
	}
	return out
}

// NewSpecies is a species first seen on a given study day.
type NewSpecies struct {
	Species model.Species
	Day     int // 1 is the date of the first record
	Date    time.Time
}

// SpeciesAccumulation lists species in the order they were first recorded,
// with the study day of their first picture.
func SpeciesAccumulation(s Summary) []NewSpecies {
	first, _, ok := s.Span()
	if !ok {
		return nil
	}
	start := civil(first)

	var out []NewSpecies
	for _, st := range Sightings(s) {
		if st.Pictures == 0 {
			continue
		}
		out = append(out, NewSpecies{
			Species: st.Species,
			Day:     int(civil(st.First).Sub(start).Hours()/24) + 1,
			Date:    st.First,
		})
	}
	slices.SortStableFunc(out, func(a, b NewSpecies) int { return a.Date.Compare(b.Date) })
	return out
}

// Rank is a species with its share of all independent events.
type Rank struct {
	Species    model.Species
	Periods    int
	Proportion float64
}

// SpeciesRanking orders species by period count, most frequent first. Ties
// are broken by name.
func (e *Engine) SpeciesRanking(s Summary) []Rank {
	out := make([]Rank, len(s.Species))
	total := 0
	for i, sp := range s.Species {
		out[i] = Rank{Species: sp, Periods: e.PeriodCount(s.Records, sp)}
		total += out[i].Periods
	}
	for i := range out {
		out[i].Proportion = VisitationProportion(out[i].Periods, total)
	}
	slices.SortStableFunc(out, func(a, b Rank) int {
		return cmp.Or(cmp.Compare(b.Periods, a.Periods), cmp.Compare(a.Species.Name, b.Species.Name))
	})
	return out
}

// recordSpecies returns each species on r once.
func recordSpecies(r *model.PhotoRecord) []model.Species {
	if len(r.Species) < 2 {
		out := make([]model.Species, len(r.Species))
		for i, e := range r.Species {
			out[i] = e.Species
		}
		return out
	}
	seen := make(map[string]struct{}, len(r.Species))
	out := make([]model.Species, 0, len(r.Species))
	for _, e := range r.Species {
		if _, ok := seen[e.Species.Key()]; ok {
			continue
		}
		seen[e.Species.Key()] = struct{}{}
		out = append(out, e.Species)
	}
	return out
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
