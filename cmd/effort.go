package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/camtrap/internal/adapters/dataset"
	"github.com/okian/camtrap/internal/domain/analysis"
	"github.com/okian/camtrap/internal/domain/effort"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
	"github.com/okian/camtrap/pkg/logger"
)

var (
	errNoRecords       = errors.New("no records at location")
	errUnknownSpecies  = errors.New("species not found in dataset")
	errMissingLocation = errors.New("--location is required")
)

type effortFlags struct {
	location string
	year     int
	species  string
}

type monthEffort struct {
	Month         string   `yaml:"month"`
	Days          int      `yaml:"days"`
	Periods       *int     `yaml:"periods,omitempty"`
	DetectionRate *float64 `yaml:"detection_rate,omitempty"`
}

type effortOutput struct {
	Location      string        `yaml:"location"`
	Year          int           `yaml:"year"`
	Species       string        `yaml:"species,omitempty"`
	Days          int           `yaml:"days"`
	Periods       *int          `yaml:"periods,omitempty"`
	DetectionRate *float64      `yaml:"detection_rate,omitempty"`
	Months        []monthEffort `yaml:"months"`
}

// newEffortCommand creates the effort command: camera days per month for one
// location and, with --species, the detection rate of that species.
func newEffortCommand(c *cli) *cobra.Command {
	var f effortFlags
	cmd := &cobra.Command{
		Use:   "effort [dataset.yaml]",
		Short: "Camera days of operation at one location",
		Long: `Print the camera days of operation per month of a year at one location.
With --species the period count and detection rate (periods per 100 camera
days) of that species are added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.effort(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.location, "location", "l", "", "Location ID")
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "Calendar year (default: year of the first record)")
	cmd.Flags().StringVarP(&f.species, "species", "s", "", "Species common or scientific name")
	return cmd
}

func (c *cli) effort(cmd *cobra.Command, path string, f effortFlags) error {
	ctx := cmd.Context()
	if f.location == "" {
		return errMissingLocation
	}

	ds, err := dataset.Load(ctx, path)
	if err != nil {
		return err
	}
	records := query.MustNew(query.LocationIDOnly(f.location)).Query(ds.Records)
	if len(records) == 0 {
		return fmt.Errorf("%w: %q", errNoRecords, f.location)
	}
	year := f.year
	if year == 0 {
		year = records[0].Timestamp.Year()
	}

	out := effortOutput{Location: f.location, Year: year}
	out.Days, err = effort.DaysOfOperation(records, year, effort.AllMonths)
	if err != nil {
		return err
	}
	for i, days := range effort.MonthlyDays(records, year) {
		out.Months = append(out.Months, monthEffort{Month: time.Month(i + 1).String(), Days: days})
	}

	if f.species != "" {
		if err := c.addDetection(&out, ds, f.species); err != nil {
			return err
		}
	}

	c.log.Debug(ctx, "effort computed",
		logger.String("location", f.location),
		logger.Int("year", year),
		logger.Int("days", out.Days),
	)
	return writeYAML(cmd.OutOrStdout(), out)
}

// addDetection fills the period and detection rate fields of out.
func (c *cli) addDetection(out *effortOutput, ds *dataset.Dataset, name string) error {
	sp, ok := findSpecies(ds.Records, name)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownSpecies, name)
	}
	eng, err := analysis.New(c.cfg.EventIntervalMinutes,
		analysis.WithGrouping(c.cfg.SegmentGrouping()),
		analysis.WithMoonWindowDays(c.cfg.MoonWindowDays),
	)
	if err != nil {
		return err
	}

	inYear := query.MustNew(query.LocationIDOnly(out.Location), query.YearOnly(out.Year)).Query(ds.Records)

	out.Species = sp.String()
	periods := eng.PeriodCount(inYear, sp)
	rate, err := eng.DetectionRate(ds.Records, sp, out.Location, out.Year, effort.AllMonths)
	if err != nil {
		return err
	}
	out.Periods, out.DetectionRate = &periods, &rate

	for i := range out.Months {
		month := time.Month(i + 1)
		inMonth := query.MustNew(query.MonthOnly(month)).Query(inYear)
		n := eng.PeriodCount(inMonth, sp)
		r, err := eng.DetectionRate(ds.Records, sp, out.Location, out.Year, month)
		if err != nil {
			return err
		}
		out.Months[i].Periods, out.Months[i].DetectionRate = &n, &r
	}
	return nil
}

// findSpecies matches name against common and scientific names, ignoring case.
func findSpecies(records []model.PhotoRecord, name string) (model.Species, bool) {
	for _, r := range records {
		for _, e := range r.Species {
			if strings.EqualFold(e.Species.Name, name) || strings.EqualFold(e.Species.ScientificName, name) {
				return e.Species, true
			}
		}
	}
	return model.Species{}, false
}
