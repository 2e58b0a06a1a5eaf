// Package segment clusters time-ordered photo records into independent
// detection events ("periods").
//
// A new period starts whenever the gap to the previous record reaches the
// event interval. Input must already be sorted by timestamp; the package never
// sorts. Out-of-order input yields negative gaps, which join the current
// period.
package segment

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/camtrap/internal/domain/model"
)

// Period is one independent detection event.
type Period struct {
	LocationID string // set only when grouping per location
	Start      time.Time
	End        time.Time
	Records    []model.PhotoRecord
}

// Size returns the number of records in the period.
func (p Period) Size() int { return len(p.Records) }

// MaxCount returns the largest count of sp on any one record of the period.
func (p Period) MaxCount(sp model.Species) int {
	best := 0
	for i := range p.Records {
		if c := p.Records[i].CountFor(sp); c > best {
			best = c
		}
	}
	return best
}

// MaxAny returns the largest count of any single species entry in the period.
func (p Period) MaxAny() int {
	best := 0
	for i := range p.Records {
		for _, e := range p.Records[i].Species {
			if e.Count > best {
				best = e.Count
			}
		}
	}
	return best
}

// Segmenter splits sorted records into periods using a fixed interval.
type Segmenter struct {
	interval time.Duration
	grouping Grouping
}

// New returns a Segmenter for the given event interval in minutes.
// Grouping defaults to PerLocation.
func New(intervalMinutes int, opts ...Option) (*Segmenter, error) {
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, intervalMinutes)
	}
	s := &Segmenter{
		interval: time.Duration(intervalMinutes) * time.Minute,
		grouping: PerLocation,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Interval returns the configured event interval.
func (s *Segmenter) Interval() time.Duration { return s.interval }

// Grouping returns the configured grouping key.
func (s *Segmenter) Grouping() Grouping { return s.grouping }

// Periods returns the periods of records ordered by start time.
func (s *Segmenter) Periods(records []model.PhotoRecord) []Period {
	if len(records) == 0 {
		return nil
	}
	if s.grouping == Pooled {
		return s.split(records, "")
	}

	var out []Period
	for _, g := range byLocation(records) {
		out = append(out, s.split(g.records, g.id)...)
	}
	slices.SortStableFunc(out, func(a, b Period) int { return a.Start.Compare(b.Start) })
	return out
}

// Count returns the number of periods without materialising them.
func (s *Segmenter) Count(records []model.PhotoRecord) int {
	if s.grouping == Pooled {
		return s.count(records)
	}
	n := 0
	for _, g := range byLocation(records) {
		n += s.count(g.records)
	}
	return n
}

// Abundance sums, over periods, the maximum count of sp seen on one record.
func (s *Segmenter) Abundance(records []model.PhotoRecord, sp model.Species) int {
	total := 0
	for _, p := range s.Periods(records) {
		total += p.MaxCount(sp)
	}
	return total
}

// AbundanceAny is Abundance where any species entry may supply the maximum.
func (s *Segmenter) AbundanceAny(records []model.PhotoRecord) int {
	total := 0
	for _, p := range s.Periods(records) {
		total += p.MaxAny()
	}
	return total
}

func (s *Segmenter) split(records []model.PhotoRecord, locationID string) []Period {
	if len(records) == 0 {
		return nil
	}
	var out []Period
	start := 0
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) >= s.interval {
			out = append(out, newPeriod(records[start:i], locationID))
			start = i
		}
	}
	return append(out, newPeriod(records[start:], locationID))
}

func (s *Segmenter) count(records []model.PhotoRecord) int {
	if len(records) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Sub(records[i-1].Timestamp) >= s.interval {
			n++
		}
	}
	return n
}

func newPeriod(records []model.PhotoRecord, locationID string) Period {
	return Period{
		LocationID: locationID,
		Start:      records[0].Timestamp,
		End:        records[len(records)-1].Timestamp,
		Records:    slices.Clone(records),
	}
}

type locationGroup struct {
	id      string
	records []model.PhotoRecord
}

// byLocation partitions records by location ID, preserving input order within
// each group and ordering groups by first appearance.
func byLocation(records []model.PhotoRecord) []locationGroup {
	index := make(map[string]int)
	var groups []locationGroup
	for i := range records {
		id := records[i].LocationID
		gi, ok := index[id]
		if !ok {
			gi = len(groups)
			index[id] = gi
			groups = append(groups, locationGroup{id: id})
		}
		groups[gi].records = append(groups[gi].records, records[i])
	}
	return groups
}

// CountIndependentEvents counts periods in a sorted sequence, pooling all
// locations into one stream.
func CountIndependentEvents(records []model.PhotoRecord, intervalMinutes int) (int, error) {
	s, err := New(intervalMinutes, WithGrouping(Pooled))
	if err != nil {
		return 0, err
	}
	return s.Count(records), nil
}

// Abundance sums per-period maximum counts of sp over a sorted sequence,
// pooling all locations into one stream.
func Abundance(records []model.PhotoRecord, intervalMinutes int, sp model.Species) (int, error) {
	s, err := New(intervalMinutes, WithGrouping(Pooled))
	if err != nil {
		return 0, err
	}
	return s.Abundance(records, sp), nil
}
