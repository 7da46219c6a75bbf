// Package formulas provides shared numeric helpers for series math.
package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a dataset.
// Returns 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Linear fits an ordinary least-squares line (value against x) and
// returns intercept and slope. Returns (0, 0) when fewer than two
// points are supplied.
func Linear(xs, ys []float64) (intercept, slope float64) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if isNaN(intercept) || isNaN(slope) {
		return 0, 0
	}
	return intercept, slope
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
