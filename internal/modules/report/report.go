// Package report reduces immutable per-series forecast results into the
// aggregates the API returns: client summaries, portfolio KPIs, top
// performers and chart series.
//
// Everything here is a pure fold over []domain.SeriesResult. The
// orchestrator computes results in parallel and hands the finished slice
// over, so no aggregation state is ever shared between goroutines.
package report

import (
	"math"
	"sort"

	"github.com/aristath/salescast/internal/domain"
)

// DefaultTopN is the number of series kept in the top performers list.
const DefaultTopN = 20

// ClientSummaries groups results by client code and totals them. Clients
// are sorted descending by forecast total so the biggest books come first.
func ClientSummaries(results []domain.SeriesResult) []domain.ClientSummary {
	byClient := make(map[string]*domain.ClientSummary)
	order := make([]string, 0)

	for _, r := range results {
		summary, ok := byClient[r.ClientCode]
		if !ok {
			summary = &domain.ClientSummary{Code: r.ClientCode}
			byClient[r.ClientCode] = summary
			order = append(order, r.ClientCode)
		}
		summary.HistoricalTotal += r.LastValue
		summary.ForecastTotal += r.FirstForecast()
		summary.SeriesCount++
		if r.Status.IsActive() {
			summary.ActiveSeries++
		}
	}

	summaries := make([]domain.ClientSummary, 0, len(order))
	for _, code := range order {
		s := byClient[code]
		s.GrowthPct = growthPct(s.HistoricalTotal, s.ForecastTotal)
		s.HistoricalTotal = round(s.HistoricalTotal, 2)
		s.ForecastTotal = round(s.ForecastTotal, 2)
		summaries = append(summaries, *s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ForecastTotal > summaries[j].ForecastTotal
	})
	return summaries
}

// Portfolio totals all results into the headline KPIs. totalClients is the
// number of clients submitted, which can exceed the clients present in the
// results when some submitted no series.
func Portfolio(results []domain.SeriesResult, totalClients int) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		TotalClients: totalClients,
		TotalSeries:  len(results),
	}

	historical := 0.0
	forecast := 0.0
	clientsWithOpenSeries := make(map[string]bool)

	for _, r := range results {
		historical += r.LastValue
		forecast += r.FirstForecast()
		if r.Status.IsActive() {
			summary.ActiveSeries++
		}
		if !r.Status.IsClosed() {
			clientsWithOpenSeries[r.ClientCode] = true
		}
	}

	summary.HistoricalTotal = round(historical, 2)
	summary.ForecastTotal = round(forecast, 2)
	summary.GrowthPct = growthPct(historical, forecast)
	summary.ActiveClients = len(clientsWithOpenSeries)
	return summary
}

// TopSeries returns the n results with the highest first-period forecast,
// descending. The input slice is not reordered. A non-positive n falls
// back to DefaultTopN.
func TopSeries(results []domain.SeriesResult, n int) []domain.SeriesResult {
	if n <= 0 {
		n = DefaultTopN
	}

	sorted := make([]domain.SeriesResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FirstForecast() > sorted[j].FirstForecast()
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// growthPct is (forecast-historical)/historical as a percentage, zero when
// there is no historical base.
func growthPct(historical, forecast float64) float64 {
	if historical == 0 {
		return 0
	}
	return round((forecast-historical)/historical*100, 2)
}

func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
