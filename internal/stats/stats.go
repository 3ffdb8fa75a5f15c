// Package stats provides small NaN-aware statistical helpers over
// gonum/stat shared by the quality and features packages.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DropNaN returns a new slice with all NaN values removed.
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Median returns the median of the non-NaN values, or NaN if none
// remain. Even-length inputs return the midpoint of the two central
// order statistics.
func Median(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 1 {
		return clean[mid]
	}
	return (clean[mid-1] + clean[mid]) / 2
}

// Quantile returns the p-quantile (linear interpolation) of the non-NaN
// values, or NaN if none remain.
func Quantile(p float64, xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return stat.Quantile(p, stat.LinInterp, clean, nil)
}

// Mean returns the mean of the non-NaN values, or NaN if none remain.
func Mean(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	return stat.Mean(clean, nil)
}

// PopStdDev returns the population standard deviation of the non-NaN
// values, or NaN if none remain.
func PopStdDev(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	return stat.PopStdDev(clean, nil)
}

// MinMax returns the minimum and maximum of the non-NaN values, or
// (NaN, NaN) if none remain.
func MinMax(xs []float64) (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(lo) || x < lo {
			lo = x
		}
		if math.IsNaN(hi) || x > hi {
			hi = x
		}
	}
	return lo, hi
}

// MinMaxNormalize returns (x - min) / (max - min) for each value,
// computed over the non-NaN values. NaN values stay NaN. A constant
// series normalizes to all-NaN (zero range).
func MinMaxNormalize(xs []float64) []float64 {
	lo, hi := MinMax(xs)
	out := make([]float64, len(xs))
	copy(out, xs)
	floats.AddConst(-lo, out)
	floats.Scale(1/(hi-lo), out)
	return out
}

// ModeInt returns the most frequent value. Ties resolve to the value
// whose first occurrence comes earliest. The slice must be non-empty.
func ModeInt(xs []int) int {
	counts := make(map[int]int, len(xs))
	firstSeen := make(map[int]int, len(xs))
	for i, x := range xs {
		counts[x]++
		if _, ok := firstSeen[x]; !ok {
			firstSeen[x] = i
		}
	}
	best := xs[0]
	for x, count := range counts {
		if count > counts[best] || (count == counts[best] && firstSeen[x] < firstSeen[best]) {
			best = x
		}
	}
	return best
}
