package report

import (
	"testing"
	"time"

	"github.com/aristath/salescast/internal/domain"
	"github.com/aristath/salescast/internal/modules/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryChart(t *testing.T) {
	periods := []calendar.Period{
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
		{Year: 2024, Month: time.March},
	}
	totals := []float64{100.123, 200.456, 300}

	points := HistoryChart(periods, totals)

	require.Len(t, points, 3)

	assert.Equal(t, "2024-01", points[0].Period)
	assert.Equal(t, "Jan 2024", points[0].Label)
	assert.Equal(t, 100.12, points[0].Value)
	// 23 business days in Jan 2024 against 22 in Jan 2023.
	assert.InDelta(t, 1.0455, points[0].BusinessDayRatio, 1e-9)

	// 21 business days in leap Feb 2024 against 20 in Feb 2023.
	assert.Equal(t, 200.46, points[1].Value)
	assert.InDelta(t, 1.05, points[1].BusinessDayRatio, 1e-9)

	// 21 business days in Mar 2024 against 23 in Mar 2023.
	assert.InDelta(t, 0.913, points[2].BusinessDayRatio, 1e-9)
}

func TestHistoryChart_TruncatesToShorterInput(t *testing.T) {
	periods := []calendar.Period{
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
	}

	points := HistoryChart(periods, []float64{10})

	require.Len(t, points, 1)
	assert.Equal(t, "2024-01", points[0].Period)
}

func TestHistoryTrend(t *testing.T) {
	history := []domain.ChartPoint{
		{Period: "2024-01", Label: "Jan 2024", Value: 10},
		{Period: "2024-02", Label: "Feb 2024", Value: 20},
		{Period: "2024-03", Label: "Mar 2024", Value: 30},
		{Period: "2024-04", Label: "Apr 2024", Value: 40},
	}

	trend := HistoryTrend(history)

	// The three-month window drops the first two positions.
	require.Len(t, trend, 2)
	assert.Equal(t, "2024-03", trend[0].Period)
	assert.Equal(t, 20.0, trend[0].Value)
	assert.Equal(t, "2024-04", trend[1].Period)
	assert.Equal(t, 30.0, trend[1].Value)

	// Trend points carry no business day ratio.
	assert.Zero(t, trend[0].BusinessDayRatio)
}

func TestHistoryTrend_ShortHistory(t *testing.T) {
	history := []domain.ChartPoint{
		{Period: "2024-01", Value: 10},
		{Period: "2024-02", Value: 20},
	}

	assert.Empty(t, HistoryTrend(history))
}

func TestForecastChart(t *testing.T) {
	axis := []calendar.Period{
		{Year: 2024, Month: time.April},
		{Year: 2024, Month: time.May},
	}
	results := []domain.SeriesResult{
		{Forecast: []float64{10, 20}},
		{Forecast: []float64{5, 5}},
		{Forecast: []float64{0, 0}},
	}

	points := ForecastChart(axis, results)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-04", points[0].Period)
	assert.Equal(t, "Apr 2024", points[0].Label)
	assert.Equal(t, 15.0, points[0].Value)
	assert.Equal(t, 25.0, points[1].Value)
}

func TestForecastChart_ShortVectorContributesPartially(t *testing.T) {
	axis := []calendar.Period{
		{Year: 2024, Month: time.April},
		{Year: 2024, Month: time.May},
	}
	results := []domain.SeriesResult{
		{Forecast: []float64{7}},
		{Forecast: []float64{10, 20}},
	}

	points := ForecastChart(axis, results)

	require.Len(t, points, 2)
	assert.Equal(t, 17.0, points[0].Value)
	assert.Equal(t, 20.0, points[1].Value)
}

func TestForecastChart_EmptyAxis(t *testing.T) {
	assert.Empty(t, ForecastChart(nil, sampleResults()))
}
