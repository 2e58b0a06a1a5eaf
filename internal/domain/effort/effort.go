// Package effort accounts for camera operation days and turns event counts
// into detection rates.
//
// A camera is considered operating on every calendar day between its first
// and last photo, inclusive. Month lengths come from the calendar, so
// February is 28 or 29 days and spans crossing a month end are split exactly.
package effort

import (
	"fmt"
	"time"

	"github.com/okian/camtrap/internal/domain/model"
)

// AllMonths disables the month restriction in DaysOfOperation.
const AllMonths time.Month = 0

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysOfOperation returns the inclusive day span between the first and last
// record taken in year, clipped to month unless month is AllMonths.
// Records are expected to come from a single location and need not be sorted.
func DaysOfOperation(records []model.PhotoRecord, year int, month time.Month) (int, error) {
	if month < AllMonths || month > time.December {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	first, last, ok := span(records, func(t time.Time) bool { return t.Year() == year })
	if !ok {
		return 0, nil
	}
	if month != AllMonths {
		first = max(first, dayNumber(year, month, 1))
		last = min(last, dayNumber(year, month, DaysInMonth(year, month)))
	}
	if last < first {
		return 0, nil
	}
	return int(last-first) + 1, nil
}

// MonthlyDays returns DaysOfOperation for every month of year, January first.
func MonthlyDays(records []model.PhotoRecord, year int) [12]int {
	var out [12]int
	for m := time.January; m <= time.December; m++ {
		// month is always valid here
		out[m-1], _ = DaysOfOperation(records, year, m)
	}
	return out
}

// TrapDays returns the inclusive day span between the first and last record,
// ignoring years.
func TrapDays(records []model.PhotoRecord) int {
	first, last, ok := span(records, func(time.Time) bool { return true })
	if !ok {
		return 0
	}
	return int(last-first) + 1
}

// DetectionRate returns periods per 100 effort days. Zero effort yields 0.
func DetectionRate(periods, effortDays int) float64 {
	if effortDays <= 0 {
		return 0
	}
	return float64(periods) / float64(effortDays) * 100
}

func span(records []model.PhotoRecord, keep func(time.Time) bool) (first, last int64, ok bool) {
	for i := range records {
		ts := records[i].Timestamp
		if !keep(ts) {
			continue
		}
		d := civilDay(ts)
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		first = min(first, d)
		last = max(last, d)
	}
	return first, last, ok
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return dayNumber(y, m, d)
}

func dayNumber(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
