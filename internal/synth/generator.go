// Package synth generates reproducible synthetic camera trap studies for
// tests, demos and load runs.
package synth

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/camtrap/internal/adapters/dataset"
	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/pkg/logger"
)

const kmPerDegree = 111.32

// Profile is how a species behaves in front of a camera.
type Profile struct {
	Species   model.Species
	PeakHour  int     // hour of highest activity
	Spread    float64 // standard deviation of visit hour, in hours
	MaxGroup  int     // largest group seen together
	BurstSize int     // pictures per visit, at most
}

// Catalog lists the species Generate draws from, in order.
var Catalog = []Profile{
	{Species: model.Species{Name: "Mule Deer", ScientificName: "Odocoileus hemionus"}, PeakHour: 6, Spread: 2.5, MaxGroup: 4, BurstSize: 5},
	{Species: model.Species{Name: "Coyote", ScientificName: "Canis latrans"}, PeakHour: 22, Spread: 3, MaxGroup: 2, BurstSize: 3},
	{Species: model.Species{Name: "Bobcat", ScientificName: "Lynx rufus"}, PeakHour: 2, Spread: 2, MaxGroup: 1, BurstSize: 2},
	{Species: model.Species{Name: "Elk", ScientificName: "Cervus canadensis"}, PeakHour: 18, Spread: 2, MaxGroup: 8, BurstSize: 6},
	{Species: model.Species{Name: "Black Bear", ScientificName: "Ursus americanus"}, PeakHour: 12, Spread: 4, MaxGroup: 3, BurstSize: 3},
	{Species: model.Species{Name: "Red Fox", ScientificName: "Vulpes vulpes"}, PeakHour: 0, Spread: 3, MaxGroup: 1, BurstSize: 2},
	{Species: model.Species{Name: "Wild Turkey", ScientificName: "Meleagris gallopavo"}, PeakHour: 9, Spread: 1.5, MaxGroup: 12, BurstSize: 8},
	{Species: model.Species{Name: "Cougar", ScientificName: "Puma concolor"}, PeakHour: 23, Spread: 2, MaxGroup: 1, BurstSize: 2},
}

// Generate builds a dataset from cfg. Output depends only on cfg.
func Generate(ctx context.Context, cfg Config) (*dataset.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	ds := &dataset.Dataset{Locations: locations(rng, cfg)}
	start := cfg.Start.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, cfg.Days)

	for d := 0; d < cfg.Days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate day %d: %w", d, err)
		}
		date := start.AddDate(0, 0, d)
		for _, loc := range ds.Locations {
			for _, p := range Catalog[:cfg.Species] {
				visits := poisson(rng, cfg.Visits)
				for v := 0; v < visits; v++ {
					ds.Records = append(ds.Records, visit(rng, src, p, loc.ID, date)...)
				}
			}
		}
	}
	slices.SortStableFunc(ds.Records, func(a, b model.PhotoRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	ds.FullMoons, ds.NewMoons = MoonPhases(start, end)

	logger.Named("synth").Debug(ctx, "synthetic study generated",
		logger.Int("locations", len(ds.Locations)),
		logger.Int("records", len(ds.Records)),
		logger.Int("days", cfg.Days),
	)
	return ds, nil
}

func locations(rng *rand.Rand, cfg Config) []model.Location {
	out := make([]model.Location, cfg.Locations)
	lngScale := kmPerDegree * math.Cos(cfg.Latitude*math.Pi/180)
	for i := range out {
		r := cfg.SpreadKm * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		id := "cam-" + strconv.Itoa(i+1)
		out[i] = model.Location{
			ID:              id,
			Name:            fmt.Sprintf("Camera %02d", i+1),
			Latitude:        cfg.Latitude + r*math.Sin(theta)/kmPerDegree,
			Longitude:       cfg.Longitude + r*math.Cos(theta)/lngScale,
			ElevationMeters: math.Round(1500 + 400*rng.Float64()),
		}
	}
	return out
}

// visit emits a burst of pictures a few minutes apart.
func visit(rng *rand.Rand, src *rand.ChaCha8, p Profile, locID string, date time.Time) []model.PhotoRecord {
	hour := math.Mod(float64(p.PeakHour)+rng.NormFloat64()*p.Spread+48, 24)
	at := date.Add(time.Duration(hour * float64(time.Hour))).Truncate(time.Second)
	group := 1 + rng.IntN(p.MaxGroup)
	burst := 1 + rng.IntN(p.BurstSize)

	out := make([]model.PhotoRecord, 0, burst)
	for b := 0; b < burst; b++ {
		count := max(1, group-rng.IntN(group))
		out = append(out, model.PhotoRecord{
			Timestamp:  at,
			LocationID: locID,
			Species:    []model.SpeciesEntry{{Species: p.Species, Count: count}},
			Source:     source(src),
		})
		at = at.Add(time.Duration(10+rng.IntN(170)) * time.Second)
	}
	return out
}

func source(r *rand.ChaCha8) string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return uuid.NewString()
	}
	return id.String() + ".jpg"
}

// poisson draws a Poisson variate with mean lambda (Knuth).
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}
