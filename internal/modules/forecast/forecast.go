// Package forecast fits a linear trend with a multiplicative seasonal
// profile to a cleaned sales series and projects it forward.
//
// The model is deliberately simple: ordinary least squares against the
// 1-based position index gives the trend, phase buckets over a derived
// season length give the seasonal factors, and a short trailing holdout
// measures in-sample error. Series too short to fit degrade to a flat
// decay of the last known value.
package forecast

import (
	"github.com/aristath/salescast/internal/modules/outliers"
	"github.com/aristath/salescast/pkg/formulas"
)

const (
	// DefaultSeasonMin and DefaultSeasonMax bound the derived seasonal
	// period length (months).
	DefaultSeasonMin = 3
	DefaultSeasonMax = 12

	// DefaultHoldoutSize is the number of trailing points held out for
	// the error estimate.
	DefaultHoldoutSize = 3

	// decayFactor shrinks the last known value for series too short to
	// fit a trend.
	decayFactor = 0.9
)

// Options tune the forecaster. The zero value selects the defaults.
type Options struct {
	SeasonMin   int
	SeasonMax   int
	HoldoutSize int
}

func (o Options) withDefaults() Options {
	if o.SeasonMin < 1 {
		o.SeasonMin = DefaultSeasonMin
	}
	if o.SeasonMax < o.SeasonMin {
		o.SeasonMax = DefaultSeasonMax
	}
	if o.HoldoutSize < 1 {
		o.HoldoutSize = DefaultHoldoutSize
	}
	return o
}

// Result is the outcome of forecasting one series.
type Result struct {
	// Vector holds one non-negative value per future period.
	Vector []float64

	// ErrorPct is the in-sample holdout error as a percentage. Nil means
	// the error could not be measured (series too short, or no holdout
	// point had a positive actual), which is distinct from a measured 0.
	ErrorPct *float64

	// Degenerate reports that the series was too short to fit a model
	// and the vector is a flat decay of the last value.
	Degenerate bool
}

// Forecast projects the active slice of a series horizon periods forward.
// The input is the contiguous segment from the first sale up to the cutoff;
// values are winsorized before fitting. Forecast values are never negative.
func Forecast(active []float64, horizon int, opts Options) Result {
	opts = opts.withDefaults()
	if horizon < 0 {
		horizon = 0
	}

	if len(active) < 2 {
		return flatDecay(active, horizon)
	}

	cleaned := outliers.Clip(active)
	n := len(cleaned)

	positions := make([]float64, n)
	for i := range positions {
		positions[i] = float64(i + 1)
	}
	intercept, slope := formulas.Linear(positions, cleaned)

	factors := seasonalFactors(cleaned, opts)
	p := len(factors)

	vector := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		position := n + i + 1
		trend := intercept + slope*float64(position)
		if trend < 0 {
			trend = 0
		}
		value := trend * factors[(position-1)%p]
		if value < 0 {
			value = 0
		}
		vector[i] = value
	}

	return Result{
		Vector:   vector,
		ErrorPct: holdoutError(cleaned, intercept, slope, opts.HoldoutSize),
	}
}

// flatDecay fills the horizon with max(0, last*decayFactor). The error is
// unmeasured, not zero.
func flatDecay(active []float64, horizon int) Result {
	last := 0.0
	if len(active) > 0 {
		last = active[len(active)-1]
	}
	value := last * decayFactor
	if value < 0 {
		value = 0
	}

	vector := make([]float64, horizon)
	for i := range vector {
		vector[i] = value
	}
	return Result{Vector: vector, Degenerate: true}
}

// seasonalFactors derives multiplicative factors from phase buckets. The
// season length is n/2 clamped into [SeasonMin, SeasonMax]; buckets with no
// members, or a zero global mean, yield a neutral factor of 1.
func seasonalFactors(cleaned []float64, opts Options) []float64 {
	n := len(cleaned)
	p := n / 2
	if p < opts.SeasonMin {
		p = opts.SeasonMin
	}
	if p > opts.SeasonMax {
		p = opts.SeasonMax
	}

	global := formulas.Mean(cleaned)

	factors := make([]float64, p)
	for phase := 0; phase < p; phase++ {
		factors[phase] = 1.0
		if global == 0 {
			continue
		}

		sum := 0.0
		count := 0
		for i := phase; i < n; i += p {
			sum += cleaned[i]
			count++
		}
		if count > 0 {
			factors[phase] = (sum / float64(count)) / global
		}
	}
	return factors
}

// holdoutError measures mean absolute percentage error of the trend line
// over the trailing holdout points. Only points with positive actuals
// contribute; nil is returned when the series is too short or no point
// contributes.
func holdoutError(cleaned []float64, intercept, slope float64, holdoutSize int) *float64 {
	n := len(cleaned)
	if n < 3 {
		return nil
	}

	size := holdoutSize
	if size > n-1 {
		size = n - 1
	}

	sum := 0.0
	contributing := 0
	for i := n - size; i < n; i++ {
		actual := cleaned[i]
		if actual <= 0 {
			continue
		}
		predicted := intercept + slope*float64(i+1)
		diff := predicted - actual
		if diff < 0 {
			diff = -diff
		}
		sum += diff / actual
		contributing++
	}

	if contributing == 0 {
		return nil
	}
	pct := sum / float64(contributing) * 100
	return &pct
}
