package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	return floats.Sum(x) / float64(n)
}

// Rate is the mean of x, or NaN when x is empty. Use it for outcome rates,
// where an empty segment has no rate rather than a rate of zero.
func Rate(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// WeightedMean averages values by weights. Pairs with a zero weight are
// skipped, so an undefined (NaN) value carried by an empty segment does not
// leak into the result. It returns NaN when all weights are zero.
func WeightedMean(values, weights []float64) float64 {
	var xs, ws []float64
	for i, w := range weights {
		if w == 0 {
			continue
		}
		xs = append(xs, values[i])
		ws = append(ws, w)
	}
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, ws)
}

// Ratio returns num/den, or NaN when den is zero or either side is NaN.
func Ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}
