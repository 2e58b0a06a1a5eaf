// Package dataset reads and writes camera trap datasets: locations, photo
// records and the reference moon-phase dates used by the lunar filters.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/pkg/logger"
	"github.com/okian/camtrap/pkg/metrics"
)

// Accepted timestamp layouts. Values without a zone are camera wall-clock
// time and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

const outputLayout = "2006-01-02 15:04:05"

// Dataset is a decoded and validated camera trap study.
type Dataset struct {
	Locations []model.Location
	Records   []model.PhotoRecord // ascending by timestamp
	FullMoons []time.Time
	NewMoons  []time.Time
}

// Location returns the catalog entry for id.
func (d *Dataset) Location(id string) (model.Location, bool) {
	i := slices.IndexFunc(d.Locations, func(l model.Location) bool { return l.ID == id })
	if i < 0 {
		return model.Location{}, false
	}
	return d.Locations[i], true
}

// Load reads a dataset file.
func Load(ctx context.Context, path string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.Named("dataset")

	f, err := os.Open(path)
	if err != nil {
		metrics.RecordErrorByComponent("dataset", "open")
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Decode(f)
	if err != nil {
		log.Error(ctx, "dataset rejected", logger.String("path", path), logger.Error(err))
		return nil, err
	}

	log.Info(ctx, "dataset loaded",
		logger.String("path", path),
		logger.Int("locations", len(ds.Locations)),
		logger.Int("records", len(ds.Records)),
	)
	return ds, nil
}

// Decode reads, validates and converts a dataset document.
func Decode(r io.Reader) (*Dataset, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		metrics.RecordErrorByComponent("dataset", "decode")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := validate(&doc); err != nil {
		metrics.RecordErrorByComponent("dataset", "validation")
		return nil, err
	}

	ds, err := convert(&doc)
	if err != nil {
		metrics.RecordErrorByComponent("dataset", "convert")
		return nil, err
	}

	metrics.RecordRecordsLoaded(len(ds.Records))
	metrics.UpdateLocationsLoaded(len(ds.Locations))
	return ds, nil
}

// Encode writes d in the document shape Decode accepts. UTC timestamps are
// written as wall-clock time; any other zone is written as RFC 3339 with its
// offset, so decoding the output yields the same instants.
func Encode(w io.Writer, d *Dataset) error {
	doc := document{
		Locations: make([]locationDoc, 0, len(d.Locations)),
		Records:   make([]recordDoc, 0, len(d.Records)),
		FullMoons: formatDates(d.FullMoons),
		NewMoons:  formatDates(d.NewMoons),
	}
	for _, l := range d.Locations {
		doc.Locations = append(doc.Locations, locationDoc{
			ID:        l.ID,
			Name:      l.Name,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Elevation: l.ElevationMeters,
		})
	}
	for i := range d.Records {
		r := &d.Records[i]
		rd := recordDoc{
			Timestamp: formatTimestamp(r.Timestamp),
			Location:  r.LocationID,
			Source:    r.Source,
		}
		for _, e := range r.Species {
			rd.Species = append(rd.Species, speciesDoc{
				Name:           e.Species.Name,
				ScientificName: e.Species.ScientificName,
				Count:          e.Count,
			})
		}
		doc.Records = append(doc.Records, rd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func validate(doc *document) error {
	err := structValidator.Struct(doc)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func convert(doc *document) (*Dataset, error) {
	ds := &Dataset{
		Locations: make([]model.Location, 0, len(doc.Locations)),
		Records:   make([]model.PhotoRecord, 0, len(doc.Records)),
	}

	known := make(map[string]struct{}, len(doc.Locations))
	for _, l := range doc.Locations {
		if _, dup := known[l.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLocation, l.ID)
		}
		known[l.ID] = struct{}{}
		loc := model.Location{
			ID:              l.ID,
			Name:            l.Name,
			Latitude:        l.Latitude,
			Longitude:       l.Longitude,
			ElevationMeters: l.Elevation,
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: locations[%d]: %w", ErrValidation, len(ds.Locations), err)
		}
		if loc.Name == "" {
			loc.Name = loc.ID
		}
		ds.Locations = append(ds.Locations, loc)
	}

	for i, rd := range doc.Records {
		ts, err := parseTimestamp(rd.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rd.Location != "" {
			if _, ok := known[rd.Location]; !ok {
				return nil, fmt.Errorf("%w: record %d references %q", ErrUnknownLocation, i, rd.Location)
			}
		}
		rec := model.PhotoRecord{
			Timestamp:  ts,
			LocationID: rd.Location,
			Source:     rd.Source,
		}
		if rec.Source == "" {
			rec.Source = uuid.NewString()
		}
		for _, s := range rd.Species {
			rec.Species = append(rec.Species, model.SpeciesEntry{
				Species: model.Species{Name: s.Name, ScientificName: s.ScientificName},
				Count:   s.Count,
			})
		}
		ds.Records = append(ds.Records, rec)
	}
	slices.SortStableFunc(ds.Records, func(a, b model.PhotoRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	var err error
	if ds.FullMoons, err = parseDates(doc.FullMoons); err != nil {
		return nil, fmt.Errorf("full_moons: %w", err)
	}
	if ds.NewMoons, err = parseDates(doc.NewMoons); err != nil {
		return nil, fmt.Errorf("new_moons: %w", err)
	}
	return ds, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func parseDates(values []string) ([]time.Time, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		ts, err := parseTimestamp(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, nil
}

func formatTimestamp(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(outputLayout)
	}
	return t.Format(time.RFC3339)
}

func formatDates(ts []time.Time) []string {
	if len(ts) == 0 {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(time.DateOnly)
	}
	return out
}
