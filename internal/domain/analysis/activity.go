package analysis

import (
	"fmt"
	"math"

	"github.com/okian/camtrap/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMinPictures is the picture count a species needs before its
// activity pattern is compared with others.
const DefaultMinPictures = 25

// HourlyPictures counts the pictures of sp taken in each hour of the day.
func HourlyPictures(records []model.PhotoRecord, sp model.Species) [hoursPerDay]int {
	return hourlyPictures(speciesOnly(sp).Query(records))
}

func hourlyPictures(records []model.PhotoRecord) [hoursPerDay]int {
	var out [hoursPerDay]int
	for i := range records {
		out[records[i].Hour()]++
	}
	return out
}

// ActivityFrequency normalises an hourly pattern so it sums to 1.
// An empty pattern stays all zeros.
func ActivityFrequency(pattern [hoursPerDay]int) [hoursPerDay]float64 {
	var out [hoursPerDay]float64
	for h, v := range pattern {
		out[h] = float64(v)
	}
	total := floats.Sum(out[:])
	if total == 0 {
		return out
	}
	floats.Scale(1/total, out[:])
	return out
}

// ActivitySimilarity is the Euclidean distance between the frequency forms of
// two hourly patterns. Lower means more similar; identical shapes give 0.
func ActivitySimilarity(a, b [hoursPerDay]int) float64 {
	fa, fb := ActivityFrequency(a), ActivityFrequency(b)
	return floats.Distance(fa[:], fb[:], 2)
}

// SpeciesPair is two species with the distance between their activity.
type SpeciesPair struct {
	A, B     model.Species
	Distance float64
}

// MostSimilarPair finds the pair of species, each with at least minPictures
// pictures, whose hourly picture patterns are closest. ok is false when fewer
// than two species qualify.
func MostSimilarPair(s Summary, minPictures int) (pair SpeciesPair, ok bool) {
	type candidate struct {
		sp      model.Species
		pattern [hoursPerDay]int
	}
	var cands []candidate
	for _, sp := range s.Species {
		recs := speciesOnly(sp).Query(s.Records)
		if len(recs) >= minPictures {
			cands = append(cands, candidate{sp: sp, pattern: hourlyPictures(recs)})
		}
	}

	pair.Distance = math.Inf(1)
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			d := ActivitySimilarity(cands[i].pattern, cands[j].pattern)
			if d < pair.Distance {
				pair = SpeciesPair{A: cands[i].sp, B: cands[j].sp, Distance: d}
				ok = true
			}
		}
	}
	if !ok {
		return SpeciesPair{}, false
	}
	return pair, true
}

// ActivityPatternsMatch runs a chi-square test of homogeneity on two hourly
// patterns. Hours empty in both patterns are dropped. It reports whether the
// null hypothesis of a shared pattern holds at the given confidence, along
// with the test statistic.
func ActivityPatternsMatch(a, b [hoursPerDay]int, confidence float64) (bool, float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return false, 0, fmt.Errorf("%w: %g", ErrInvalidConfidence, confidence)
	}

	var rowA, rowB float64
	var hours []int
	for h := 0; h < hoursPerDay; h++ {
		rowA += float64(a[h])
		rowB += float64(b[h])
		if a[h]+b[h] > 0 {
			hours = append(hours, h)
		}
	}
	if rowA == 0 || rowB == 0 {
		return false, 0, ErrEmptyPattern
	}
	if len(hours) < 2 {
		return true, 0, nil
	}

	total := rowA + rowB
	obs := make([]float64, 0, 2*len(hours))
	exp := make([]float64, 0, 2*len(hours))
	for _, h := range hours {
		col := float64(a[h] + b[h])
		obs = append(obs, float64(a[h]), float64(b[h]))
		exp = append(exp, rowA*col/total, rowB*col/total)
	}

	chi := stat.ChiSquare(obs, exp)
	critical := distuv.ChiSquared{K: float64(len(hours) - 1)}.Quantile(confidence)
	return chi <= critical, chi, nil
}
