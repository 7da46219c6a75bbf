package engine

import (
	"github.com/aristath/salescast/internal/domain"
	"github.com/aristath/salescast/internal/modules/forecast"
	"github.com/aristath/salescast/internal/modules/lifecycle"
)

// seriesJob is one series aligned to the shared period axis.
type seriesJob struct {
	clientCode    string
	articleCode   string
	materialGroup string
	brand         string
	businessLine  string
	values        []float64
}

// computeParams are the per-request knobs shared by every series job.
type computeParams struct {
	horizon           int
	cutoffIndex       int
	dormancyThreshold int
	forecastOpts      forecast.Options
}

// computeSeries runs the full per-series pipeline: lifecycle
// classification, then outlier clipping and model fitting on the active
// slice. It never panics outward; a panicking series degrades to a
// closed zero-vector result so one bad series cannot fail the request.
func computeSeries(job seriesJob, params computeParams) (result domain.SeriesResult, failed bool) {
	result = domain.SeriesResult{
		ClientCode:    job.clientCode,
		ArticleCode:   job.articleCode,
		MaterialGroup: job.materialGroup,
		Brand:         job.brand,
		BusinessLine:  job.businessLine,
		Status:        domain.StatusClosed,
		Forecast:      make([]float64, params.horizon),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = domain.StatusClosed
			result.Forecast = make([]float64, params.horizon)
			result.VariationPct = 0
			result.ErrorPct = nil
			failed = true
		}
	}()

	if params.cutoffIndex >= 0 && params.cutoffIndex < len(job.values) {
		result.LastValue = job.values[params.cutoffIndex]
	}

	class := lifecycle.Classify(job.values, params.cutoffIndex, params.dormancyThreshold)
	switch {
	case class.Closed:
		result.Status = domain.StatusClosed
		return result, false
	case !class.Started:
		result.Status = domain.StatusInsufficientData
		return result, false
	}

	active := job.values[class.StartIndex : params.cutoffIndex+1]
	fc := forecast.Forecast(active, params.horizon, params.forecastOpts)

	result.Forecast = fc.Vector
	result.ErrorPct = fc.ErrorPct
	if fc.Degenerate {
		result.Status = domain.StatusInsufficientData
	} else {
		result.Status = domain.StatusActive
	}
	result.VariationPct = variationPct(result.LastValue, result.FirstForecast())

	return result, false
}

// variationPct is the first-period change relative to the last historical
// value, zero-guarded.
func variationPct(last, first float64) float64 {
	if last == 0 {
		return 0
	}
	return (first - last) / last * 100
}
