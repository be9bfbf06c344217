package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// present returns the non-NaN values of xs
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the p-quantile of the non-missing values using linear
// interpolation between the closest ranks, rank = p*(n-1). It returns NaN
// when no value is present.
func Quantile(xs []float64, p float64) float64 {
	sorted := present(xs)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median returns the median of the non-missing values, or NaN
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Mode returns the most frequent non-missing value. Ties resolve to the
// lexicographically smallest value. ok is false when every value is missing.
func Mode(values []string, nulls []bool) (mode string, ok bool) {
	counts := make(map[string]int)
	for i, v := range values {
		if nulls != nil && nulls[i] {
			continue
		}
		counts[v]++
	}

	best := 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}
	return mode, best > 0
}

// MeanStdDev returns the mean and the population standard deviation of the
// non-missing values.
func MeanStdDev(xs []float64) (mean, std float64) {
	vals := present(xs)
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(vals, nil)
}
