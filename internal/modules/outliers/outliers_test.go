package outliers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClip_HighOutlier(t *testing.T) {
	// Sorted: {9,10,11,11,12,12,13,100}. Q1 = index 2 = 11, Q3 = index 6 = 13,
	// IQR = 2, fences at 8 and 16.
	values := []float64{10, 12, 11, 13, 100, 9, 11, 12}

	cleaned := Clip(values)

	require.Len(t, cleaned, len(values))
	assert.Equal(t, []float64{10, 12, 11, 13, 16, 9, 11, 12}, cleaned)
}

func TestClip_LowOutlier(t *testing.T) {
	// Sorted: {1,47,48,49,50,50,51,52}. Q1 = 48, Q3 = 51, IQR = 3,
	// fences at 43.5 and 55.5.
	values := []float64{50, 48, 52, 1, 49, 51, 50, 47}

	cleaned := Clip(values)

	assert.Equal(t, []float64{50, 48, 52, 43.5, 49, 51, 50, 47}, cleaned)
}

func TestClip_NoOutliers(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 15}
	cleaned := Clip(values)
	assert.Equal(t, values, cleaned)
}

func TestClip_ShortSeriesUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{name: "three points with spike", values: []float64{5, 500, 3}},
		{name: "single point", values: []float64{42}},
		{name: "empty", values: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned := Clip(tt.values)
			assert.Equal(t, tt.values, cleaned)
		})
	}
}

func TestClip_ConstantSeries(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10}
	assert.Equal(t, values, Clip(values))
}

func TestClip_DoesNotMutateInput(t *testing.T) {
	values := []float64{10, 12, 11, 13, 100, 9, 11, 12}
	original := make([]float64, len(values))
	copy(original, values)

	Clip(values)

	assert.Equal(t, original, values)
}

func TestClip_Idempotent(t *testing.T) {
	values := []float64{10, 12, 11, 13, 100, 9, 11, 12, 0.5, 11}

	once := Clip(values)
	twice := Clip(once)

	assert.Equal(t, once, twice)
}
