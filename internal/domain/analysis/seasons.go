package analysis

import (
	"time"

	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
)

// Season is a named set of months.
type Season struct {
	Name   string
	Months []time.Month
}

// Seasons are the meteorological seasons of the northern hemisphere.
var Seasons = []Season{
	{Name: "winter", Months: []time.Month{time.December, time.January, time.February}},
	{Name: "spring", Months: []time.Month{time.March, time.April, time.May}},
	{Name: "summer", Months: []time.Month{time.June, time.July, time.August}},
	{Name: "fall", Months: []time.Month{time.September, time.October, time.November}},
}

// SeasonalPeriods counts periods of sp in the months of season.
func (e *Engine) SeasonalPeriods(records []model.PhotoRecord, sp model.Species, season Season) (int, error) {
	f, err := query.New(query.SpeciesOnly(sp), query.MonthOnly(season.Months...))
	if err != nil {
		return 0, err
	}
	return e.seg.Count(f.Query(records)), nil
}

// SeasonalEffort sums the camera days of every location over the months of
// season in every year of the summary.
func SeasonalEffort(s Summary, season Season) (int, error) {
	total := 0
	for _, loc := range s.Locations {
		at := query.MustNew(query.LocationIDOnly(loc.ID)).Query(s.Records)
		for _, y := range s.Years {
			for _, m := range season.Months {
				d, err := effort.DaysOfOperation(at, y, m)
				if err != nil {
					return 0, err
				}
				total += d
			}
		}
	}
	return total, nil
}

// VisitationProportion is the share of all periods that belong to one species.
func VisitationProportion(speciesPeriods, allPeriods int) float64 {
	if allPeriods <= 0 {
		return 0
	}
	return float64(speciesPeriods) / float64(allPeriods)
}
