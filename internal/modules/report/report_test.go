package report

import (
	"testing"

	"github.com/aristath/salescast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []domain.SeriesResult {
	return []domain.SeriesResult{
		{ClientCode: "C1", ArticleCode: "A1", Status: domain.StatusActive, LastValue: 100, Forecast: []float64{110, 120}},
		{ClientCode: "C1", ArticleCode: "A2", Status: domain.StatusClosed, LastValue: 50, Forecast: []float64{0, 0}},
		{ClientCode: "C2", ArticleCode: "B1", Status: domain.StatusActive, LastValue: 200, Forecast: []float64{260, 270}},
	}
}

func TestClientSummaries(t *testing.T) {
	summaries := ClientSummaries(sampleResults())

	require.Len(t, summaries, 2)

	// Sorted descending by forecast total: C2 (260) before C1 (110).
	c2 := summaries[0]
	assert.Equal(t, "C2", c2.Code)
	assert.Equal(t, 200.0, c2.HistoricalTotal)
	assert.Equal(t, 260.0, c2.ForecastTotal)
	assert.Equal(t, 30.0, c2.GrowthPct)
	assert.Equal(t, 1, c2.SeriesCount)
	assert.Equal(t, 1, c2.ActiveSeries)

	c1 := summaries[1]
	assert.Equal(t, "C1", c1.Code)
	assert.Equal(t, 150.0, c1.HistoricalTotal)
	assert.Equal(t, 110.0, c1.ForecastTotal)
	assert.InDelta(t, -26.67, c1.GrowthPct, 1e-9)
	assert.Equal(t, 2, c1.SeriesCount)
	assert.Equal(t, 1, c1.ActiveSeries)
}

func TestClientSummaries_ZeroHistoricalGuard(t *testing.T) {
	results := []domain.SeriesResult{
		{ClientCode: "C1", Status: domain.StatusActive, LastValue: 0, Forecast: []float64{50}},
	}

	summaries := ClientSummaries(results)

	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].GrowthPct)
}

func TestClientSummaries_Empty(t *testing.T) {
	assert.Empty(t, ClientSummaries(nil))
}

func TestPortfolio(t *testing.T) {
	summary := Portfolio(sampleResults(), 3)

	assert.Equal(t, 350.0, summary.HistoricalTotal)
	assert.Equal(t, 370.0, summary.ForecastTotal)
	assert.InDelta(t, 5.71, summary.GrowthPct, 1e-9)
	assert.Equal(t, 3, summary.TotalClients)
	assert.Equal(t, 2, summary.ActiveClients)
	assert.Equal(t, 3, summary.TotalSeries)
	assert.Equal(t, 2, summary.ActiveSeries)
}

func TestPortfolio_ClientWithOnlyClosedSeriesIsInactive(t *testing.T) {
	results := []domain.SeriesResult{
		{ClientCode: "C1", Status: domain.StatusActive, LastValue: 10, Forecast: []float64{10}},
		{ClientCode: "C2", Status: domain.StatusClosed, LastValue: 5, Forecast: []float64{0}},
	}

	summary := Portfolio(results, 2)

	assert.Equal(t, 1, summary.ActiveClients)
	assert.Equal(t, 2, summary.TotalClients)
}

func TestPortfolio_InsufficientDataCountsAsOpen(t *testing.T) {
	// A series that never produced a fit is still not closed, so its
	// client stays in the active client count.
	results := []domain.SeriesResult{
		{ClientCode: "C1", Status: domain.StatusInsufficientData, LastValue: 10, Forecast: []float64{9}},
	}

	summary := Portfolio(results, 1)

	assert.Equal(t, 1, summary.ActiveClients)
	assert.Equal(t, 0, summary.ActiveSeries)
}

func TestPortfolio_ZeroGuards(t *testing.T) {
	summary := Portfolio(nil, 0)

	assert.Equal(t, 0.0, summary.GrowthPct)
	assert.Equal(t, 0.0, summary.HistoricalTotal)
	assert.Equal(t, 0, summary.ActiveClients)
}

func TestTopSeries(t *testing.T) {
	results := []domain.SeriesResult{
		{ClientCode: "C1", ArticleCode: "A1", Forecast: []float64{5}},
		{ClientCode: "C2", ArticleCode: "B1", Forecast: []float64{300}},
		{ClientCode: "C3", ArticleCode: "D1", Forecast: []float64{40}},
	}

	top := TopSeries(results, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "B1", top[0].ArticleCode)
	assert.Equal(t, "D1", top[1].ArticleCode)

	// Input order is untouched.
	assert.Equal(t, "A1", results[0].ArticleCode)
}

func TestTopSeries_DefaultLimit(t *testing.T) {
	results := []domain.SeriesResult{
		{ArticleCode: "A1", Forecast: []float64{5}},
		{ArticleCode: "A2", Forecast: []float64{10}},
	}

	top := TopSeries(results, 0)

	require.Len(t, top, 2)
	assert.Equal(t, "A2", top[0].ArticleCode)
}
