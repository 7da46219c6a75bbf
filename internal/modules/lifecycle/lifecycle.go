// Package lifecycle classifies sales series as active, dormant or not yet
// started relative to a cutoff period.
//
// A series is closed when the run of consecutive non-positive values ending
// at the cutoff is longer than the dormancy threshold. A series that has no
// positive value at or before the cutoff has not started and is never
// forecast.
package lifecycle

// DefaultDormancyThreshold is the number of consecutive months without
// sales a series may accumulate before one more marks it closed.
const DefaultDormancyThreshold = 3

// Classification is the lifecycle verdict for one series at a cutoff.
type Classification struct {
	// Closed means the series was active at some point but has been
	// dormant for more than the threshold number of months.
	Closed bool

	// Started reports whether any period at or before the cutoff has a
	// strictly positive value. When false, StartIndex is meaningless and
	// the series must not be forecast.
	Started bool

	// StartIndex is the index of the oldest period with a strictly
	// positive value, scanning forward. Zero when Started is false.
	StartIndex int
}

// Classify inspects values up to and including cutoffIndex. A negative
// cutoffIndex means the cutoff period is not part of the series axis, which
// only happens on malformed input, and yields a closed classification.
// A threshold below 1 falls back to DefaultDormancyThreshold.
func Classify(values []float64, cutoffIndex int, dormancyThreshold int) Classification {
	if dormancyThreshold < 1 {
		dormancyThreshold = DefaultDormancyThreshold
	}
	if cutoffIndex < 0 || cutoffIndex >= len(values) {
		return Classification{Closed: true}
	}

	c := Classification{}
	for i := 0; i <= cutoffIndex; i++ {
		if values[i] > 0 {
			c.Started = true
			c.StartIndex = i
			break
		}
	}

	dormant := 0
	for i := cutoffIndex; i >= 0; i-- {
		if values[i] > 0 {
			break
		}
		dormant++
		if dormant > dormancyThreshold {
			c.Closed = true
			break
		}
	}

	return c
}
