package formulas

import (
	"github.com/markcheno/go-talib"
)

// Sma calculates a simple moving average over the series.
//
// Returns a slice aligned with the input: the first length-1 entries are
// 0 (warm-up window, the talib convention). Returns nil when the series
// is shorter than the window.
func Sma(values []float64, length int) []float64 {
	if length < 1 || len(values) < length {
		return nil
	}
	return talib.Sma(values, length)
}
