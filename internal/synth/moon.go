package synth

import (
	"math"
	"time"
)

// Mean synodic month and a reference new moon (2000-01-06 18:14 UTC).
const synodicDays = 29.530588853

var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// MoonPhases returns the approximate dates of full and new moons in
// [from, to], truncated to the UTC day. Dates can be a day off the
// astronomical ones, which the phase window absorbs.
func MoonPhases(from, to time.Time) (full, newMoons []time.Time) {
	if to.Before(from) {
		return nil, nil
	}
	month := time.Duration(synodicDays * 24 * float64(time.Hour))
	n := math.Floor(from.Sub(referenceNewMoon).Hours() / 24 / synodicDays)
	at := referenceNewMoon.Add(time.Duration(n) * month)

	for ; !at.After(to); at = at.Add(month) {
		if !at.Before(from) {
			newMoons = append(newMoons, at.Truncate(24*time.Hour))
		}
		f := at.Add(month / 2)
		if !f.Before(from) && !f.After(to) {
			full = append(full, f.Truncate(24*time.Hour))
		}
	}
	return full, newMoons
}
