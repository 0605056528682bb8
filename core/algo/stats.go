package algo

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// WeightedMean returns sum(v*w)/sum(w). It returns false when the lengths differ,
// the slice is empty, or the weights sum to zero.
func WeightedMean(values, weights []float64) (float64, bool) {
	if len(values) == 0 || len(values) != len(weights) {
		return 0, false
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0, false
	}
	return stat.Mean(values, weights), true
}

// Slope fits a least-squares line y = a + b*x and returns b. The fit is undefined
// when there are fewer than two points or every x is identical.
func Slope(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return 0, false
	}
	if slices.Min(x) == slices.Max(x) {
		return 0, false
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0, false
	}
	return beta, true
}

// RSquared returns the coefficient of determination of predictions against actuals.
// It is undefined for fewer than two pairs. When the actual values have no variance
// the score is 1 for an exact fit and 0 otherwise.
func RSquared(actual, predicted []float64) (float64, bool) {
	if len(actual) < 2 || len(actual) != len(predicted) {
		return 0, false
	}
	if slices.Min(actual) == slices.Max(actual) {
		if slices.Equal(actual, predicted) {
			return 1, true
		}
		return 0, true
	}
	return stat.RSquaredFrom(predicted, actual, nil), true
}

// Percentile returns the p-th quantile (p in [0,1]) of values, interpolating
// linearly between order statistics at rank (n-1)*p. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	h := float64(len(sorted)-1) * Clamp(p, 0, 1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// SampleStdDev returns the n-1 standard deviation, or 0 with fewer than two values.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return sd
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
