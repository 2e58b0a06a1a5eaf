package segment_test

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/segment"
	"github.com/smartystreets/goconvey/convey"
)

var (
	base  = time.Date(2020, 7, 1, 20, 0, 0, 0, time.UTC)
	deer  = model.Species{Name: "Mule Deer", ScientificName: "Odocoileus hemionus"}
	javel = model.Species{Name: "Javelina", ScientificName: "Pecari tajacu"}
)

func at(minutes int, loc string, count int) model.PhotoRecord {
	return model.PhotoRecord{
		Timestamp:  base.Add(time.Duration(minutes) * time.Minute),
		LocationID: loc,
		Species:    []model.SpeciesEntry{{Species: deer, Count: count}},
	}
}

func TestCountIndependentEvents(t *testing.T) {
	convey.Convey("Given records at 0, 5, 40 and 45 minutes", t, func() {
		records := []model.PhotoRecord{at(0, "a", 1), at(5, "a", 3), at(40, "a", 2), at(45, "a", 1)}

		convey.Convey("When segmenting with a 30 minute interval", func() {
			n, err := segment.CountIndependentEvents(records, 30)

			convey.Convey("Then there are two periods", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When computing abundance", func() {
			n, err := segment.Abundance(records, 30, deer)

			convey.Convey("Then the per-period maxima are summed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the interval equals a gap exactly", func() {
			n, _ := segment.CountIndependentEvents(records, 5)

			convey.Convey("Then the gap opens a new period", func() {
				convey.So(n, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the interval exceeds every gap", func() {
			n, _ := segment.CountIndependentEvents(records, 36)

			convey.Convey("Then everything is one period", func() {
				convey.So(n, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given gaps measured to the previous record, not the period start", t, func() {
		records := []model.PhotoRecord{at(0, "a", 1), at(20, "a", 1), at(40, "a", 1), at(60, "a", 1)}

		convey.Convey("Then a slow trickle stays one period", func() {
			n, _ := segment.CountIndependentEvents(records, 30)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given degenerate input", t, func() {
		convey.Convey("Then an empty sequence has no periods and no abundance", func() {
			n, err := segment.CountIndependentEvents(nil, 30)
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 0)
			a, err := segment.Abundance(nil, 30, deer)
			convey.So(err, convey.ShouldBeNil)
			convey.So(a, convey.ShouldEqual, 0)
		})

		convey.Convey("Then a single record is one period for any interval", func() {
			for _, interval := range []int{1, 30, 60, 10_000} {
				n, _ := segment.CountIndependentEvents([]model.PhotoRecord{at(0, "a", 1)}, interval)
				convey.So(n, convey.ShouldEqual, 1)
			}
		})

		convey.Convey("Then identical timestamps merge", func() {
			n, _ := segment.CountIndependentEvents([]model.PhotoRecord{at(0, "a", 1), at(0, "a", 1)}, 1)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a non-positive interval", t, func() {
		for _, interval := range []int{0, -5} {
			_, err := segment.CountIndependentEvents([]model.PhotoRecord{at(0, "a", 1)}, interval)
			convey.So(errors.Is(err, segment.ErrInvalidInterval), convey.ShouldBeTrue)
			_, err = segment.Abundance(nil, interval, deer)
			convey.So(errors.Is(err, segment.ErrInvalidInterval), convey.ShouldBeTrue)
			_, err = segment.New(interval)
			convey.So(errors.Is(err, segment.ErrInvalidInterval), convey.ShouldBeTrue)
		}
	})
}

func TestCountBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	convey.Convey("Given random sorted sequences", t, func() {
		for trial := 0; trial < 200; trial++ {
			n := 1 + rng.IntN(50)
			records := make([]model.PhotoRecord, n)
			minute := 0
			for i := range records {
				minute += rng.IntN(90)
				records[i] = at(minute, "a", 1+rng.IntN(4))
			}
			interval := 1 + rng.IntN(120)

			got, err := segment.CountIndependentEvents(records, interval)

			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldBeGreaterThanOrEqualTo, 1)
			convey.So(got, convey.ShouldBeLessThanOrEqualTo, n)
		}
	})
}

func TestSegmenterGrouping(t *testing.T) {
	convey.Convey("Given simultaneous sightings at two sites", t, func() {
		records := []model.PhotoRecord{at(0, "ridge", 2), at(1, "wash", 1), at(10, "ridge", 1)}

		convey.Convey("When grouping per location", func() {
			s, err := segment.New(30, segment.WithGrouping(segment.PerLocation))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then each site forms its own period", func() {
				convey.So(s.Count(records), convey.ShouldEqual, 2)
				convey.So(s.Abundance(records, deer), convey.ShouldEqual, 3)

				periods := s.Periods(records)
				convey.So(len(periods), convey.ShouldEqual, 2)
				convey.So(periods[0].LocationID, convey.ShouldEqual, "ridge")
				convey.So(periods[0].Size(), convey.ShouldEqual, 2)
				convey.So(periods[0].End, convey.ShouldEqual, base.Add(10*time.Minute))
				convey.So(periods[1].LocationID, convey.ShouldEqual, "wash")
			})
		})

		convey.Convey("When pooling all sites", func() {
			s, err := segment.New(30, segment.WithGrouping(segment.Pooled))
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the sightings merge into one period", func() {
				convey.So(s.Count(records), convey.ShouldEqual, 1)
				convey.So(s.Abundance(records, deer), convey.ShouldEqual, 2)
				convey.So(s.Periods(records)[0].LocationID, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When no grouping option is given", func() {
			s, _ := segment.New(30)

			convey.Convey("Then per-location grouping is used", func() {
				convey.So(s.Grouping(), convey.ShouldEqual, segment.PerLocation)
				convey.So(s.Interval(), convey.ShouldEqual, 30*time.Minute)
			})
		})

		convey.Convey("When an unknown grouping is requested", func() {
			s, err := segment.New(30, segment.WithGrouping(segment.Grouping(9)))

			convey.Convey("Then New fails with an invalid grouping error", func() {
				convey.So(s, convey.ShouldBeNil)
				convey.So(errors.Is(err, segment.ErrInvalidGrouping), convey.ShouldBeTrue)
			})
		})
	})
}

func TestAbundanceAny(t *testing.T) {
	convey.Convey("Given a period with two species", t, func() {
		mixed := model.PhotoRecord{
			Timestamp: base,
			Species: []model.SpeciesEntry{
				{Species: deer, Count: 2},
				{Species: javel, Count: 5},
			},
		}
		records := []model.PhotoRecord{mixed, at(3, "", 4), at(120, "", 1)}
		s, _ := segment.New(60, segment.WithGrouping(segment.Pooled))

		convey.Convey("Then the largest single entry represents each period", func() {
			convey.So(s.AbundanceAny(records), convey.ShouldEqual, 6)
			convey.So(s.Abundance(records, deer), convey.ShouldEqual, 5)
			convey.So(s.Abundance(records, javel), convey.ShouldEqual, 5)
		})
	})
}

func TestParseGrouping(t *testing.T) {
	convey.Convey("Given grouping names", t, func() {
		g, err := segment.ParseGrouping("Pooled")
		convey.So(err, convey.ShouldBeNil)
		convey.So(g, convey.ShouldEqual, segment.Pooled)

		g, err = segment.ParseGrouping("location")
		convey.So(err, convey.ShouldBeNil)
		convey.So(g.String(), convey.ShouldEqual, "location")

		_, err = segment.ParseGrouping("site")
		convey.So(errors.Is(err, segment.ErrInvalidGrouping), convey.ShouldBeTrue)
	})
}
