package lunar_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/camtrap/internal/domain/lunar"
	. "github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestIsNearPhase(t *testing.T) {
	Convey("Given a full moon on 2020-06-05", t, func() {
		refs := []time.Time{date(2020, 6, 5, 19)}

		Convey("Then dates five days either side are near", func() {
			So(lunar.IsNearPhase(date(2020, 5, 31, 0), refs, lunar.DefaultWindowDays), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2020, 6, 10, 23), refs, lunar.DefaultWindowDays), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2020, 6, 5, 1), refs, lunar.DefaultWindowDays), ShouldBeTrue)
		})

		Convey("Then dates six days away are not near", func() {
			So(lunar.IsNearPhase(date(2020, 5, 30, 23), refs, lunar.DefaultWindowDays), ShouldBeFalse)
			So(lunar.IsNearPhase(date(2020, 6, 11, 0), refs, lunar.DefaultWindowDays), ShouldBeFalse)
		})

		Convey("Then the hour of day does not matter", func() {
			So(lunar.IsNearPhase(date(2020, 6, 10, 0), refs, lunar.DefaultWindowDays), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2020, 6, 10, 23), refs, lunar.DefaultWindowDays), ShouldBeTrue)
		})

		Convey("Then a zero-day window matches only the same date", func() {
			So(lunar.IsNearPhase(date(2020, 6, 5, 3), refs, 0), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2020, 6, 6, 3), refs, 0), ShouldBeFalse)
		})
	})

	Convey("Given several reference dates", t, func() {
		refs := []time.Time{date(2020, 1, 10, 0), date(2020, 2, 9, 0), date(2020, 3, 9, 0)}

		Convey("Then a match against any of them is enough", func() {
			So(lunar.IsNearPhase(date(2020, 2, 12, 4), refs, 5), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2020, 2, 24, 4), refs, 5), ShouldBeFalse)
		})

		Convey("Then windows cross month and year boundaries", func() {
			So(lunar.IsNearPhase(date(2020, 3, 1, 0), []time.Time{date(2020, 2, 27, 0)}, 3), ShouldBeTrue)
			So(lunar.IsNearPhase(date(2019, 12, 30, 0), []time.Time{date(2020, 1, 2, 0)}, 3), ShouldBeTrue)
		})
	})

	Convey("Given no reference dates", t, func() {
		Convey("Then nothing is near", func() {
			So(lunar.IsNearPhase(date(2020, 1, 1, 0), nil, 5), ShouldBeFalse)
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given a default window", t, func() {
		w, err := lunar.NewWindow()

		Convey("Then it uses five days", func() {
			So(err, ShouldBeNil)
			So(w.Days(), ShouldEqual, lunar.DefaultWindowDays)
			So(w.IsNear(date(2021, 1, 1, 0), []time.Time{date(2021, 1, 6, 0)}), ShouldBeTrue)
		})
	})

	Convey("Given an overridden window", t, func() {
		w, err := lunar.NewWindow(lunar.WithDays(2))

		Convey("Then the narrower radius applies", func() {
			So(err, ShouldBeNil)
			So(w.IsNear(date(2021, 1, 1, 0), []time.Time{date(2021, 1, 4, 0)}), ShouldBeFalse)
			So(w.IsNear(date(2021, 1, 2, 0), []time.Time{date(2021, 1, 4, 0)}), ShouldBeTrue)
		})
	})

	Convey("Given a negative window", t, func() {
		_, err := lunar.NewWindow(lunar.WithDays(-1))

		Convey("Then construction fails", func() {
			So(errors.Is(err, lunar.ErrInvalidWindow), ShouldBeTrue)
		})
	})

	Convey("Given the phase names", t, func() {
		So(lunar.FullMoon.String(), ShouldEqual, "full")
		So(lunar.NewMoon.String(), ShouldEqual, "new")
	})
}
