package report

import (
	"github.com/aristath/salescast/internal/domain"
	"github.com/aristath/salescast/internal/modules/calendar"
	"github.com/aristath/salescast/pkg/formulas"
)

// TrendWindow is the span of the moving average drawn over the history
// chart, in months.
const TrendWindow = 3

// HistoryChart renders the summed historical totals, one point per period
// up to the cutoff. Each point carries the year-over-year business day
// ratio against the same month of the prior year; the ratio is
// informational and never alters the values.
func HistoryChart(periods []calendar.Period, totals []float64) []domain.ChartPoint {
	n := len(periods)
	if len(totals) < n {
		n = len(totals)
	}

	points := make([]domain.ChartPoint, 0, n)
	for i := 0; i < n; i++ {
		p := periods[i]
		points = append(points, domain.ChartPoint{
			Period:           p.String(),
			Label:            p.Label(),
			Value:            round(totals[i], 2),
			BusinessDayRatio: round(calendar.BusinessDayRatio(p, p.PriorYear()), 4),
		})
	}
	return points
}

// HistoryTrend smooths the history chart with a moving average. Warm-up
// positions are dropped, so the trend starts TrendWindow-1 points into the
// history; histories shorter than the window produce no trend at all.
func HistoryTrend(history []domain.ChartPoint) []domain.ChartPoint {
	if len(history) < TrendWindow {
		return []domain.ChartPoint{}
	}

	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Value
	}
	smoothed := formulas.Sma(values, TrendWindow)

	points := make([]domain.ChartPoint, 0, len(history)-TrendWindow+1)
	for i := TrendWindow - 1; i < len(history); i++ {
		points = append(points, domain.ChartPoint{
			Period: history[i].Period,
			Label:  history[i].Label,
			Value:  round(smoothed[i], 2),
		})
	}
	return points
}

// ForecastChart sums the forecast vectors across all series, one point per
// forecast-axis period. Vectors shorter than the axis contribute nothing
// beyond their length.
func ForecastChart(axis []calendar.Period, results []domain.SeriesResult) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(axis))
	for i, p := range axis {
		total := 0.0
		for _, r := range results {
			if i < len(r.Forecast) {
				total += r.Forecast[i]
			}
		}
		points = append(points, domain.ChartPoint{
			Period: p.String(),
			Label:  p.Label(),
			Value:  round(total, 2),
		})
	}
	return points
}
