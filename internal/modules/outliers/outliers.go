// Package outliers winsorizes sales series before model fitting so that
// promotional spikes and entry errors cannot dominate a short trend fit.
package outliers

import "sort"

// minSampleSize is the smallest series for which quartile spread
// estimation is considered meaningful.
const minSampleSize = 4

// Clip winsorizes values against Tukey fences at 1.5 IQR. Quartiles are
// taken at the floor(0.25*n) and floor(0.75*n) positions of a sorted copy,
// without interpolation. Values outside the fences are clipped to the
// nearest fence, never removed, so series length and the index-to-period
// mapping are preserved. Series shorter than four points are returned as a
// copy, unchanged.
func Clip(values []float64) []float64 {
	cleaned := make([]float64, len(values))
	copy(cleaned, values)
	if len(values) < minSampleSize {
		return cleaned
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := sorted[len(sorted)/4]
	q3 := sorted[len(sorted)*3/4]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	for i, v := range cleaned {
		if v < lower {
			cleaned[i] = lower
		} else if v > upper {
			cleaned[i] = upper
		}
	}
	return cleaned
}
