package engine

import "github.com/aristath/salescast/internal/domain"

// ModelBaseline is the built-in trend plus seasonality model.
const ModelBaseline = "baseline"

// ForecastRequest is the payload of POST /api/forecast. Periods are
// "YYYY-MM" keys, oldest first, and define the shared history axis for
// every series in the request. Values for periods a series does not
// mention are zero.
type ForecastRequest struct {
	Periods        []string        `json:"periods"`
	Cutoff         string          `json:"cutoff"`
	ForecastMonths int             `json:"forecast_months"`
	Model          string          `json:"model"`
	Clients        []ClientPayload `json:"clients"`
	Options        RequestOptions  `json:"options"`
}

// ClientPayload groups the submitted series of one client.
type ClientPayload struct {
	Code   string          `json:"code"`
	Series []SeriesPayload `json:"series"`
}

// SeriesPayload is one client and article sales history keyed by period.
type SeriesPayload struct {
	ArticleCode   string             `json:"article_code"`
	Values        map[string]float64 `json:"values"`
	MaterialGroup string             `json:"material_group,omitempty"`
	Brand         string             `json:"brand,omitempty"`
	BusinessLine  string             `json:"business_line,omitempty"`
}

// RequestOptions override deployment defaults for a single request.
// Zero values select the configured defaults.
type RequestOptions struct {
	DormancyThreshold int `json:"dormancy_threshold,omitempty"`
	TopN              int `json:"top_n,omitempty"`
	HoldoutSize       int `json:"holdout_size,omitempty"`
}

// ForecastResponse is the full result of one forecast run.
type ForecastResponse struct {
	Summary       domain.PortfolioSummary `json:"summary"`
	HistoryChart  []domain.ChartPoint     `json:"history_chart"`
	HistoryTrend  []domain.ChartPoint     `json:"history_trend"`
	ForecastChart []domain.ChartPoint     `json:"forecast_chart"`
	TopSeries     []domain.SeriesResult   `json:"top_series"`
	Clients       []domain.ClientSummary  `json:"clients"`
	Results       ResultsBlock            `json:"results"`
	Diagnostics   Diagnostics             `json:"diagnostics"`
	Warnings      []string                `json:"warnings"`
}

// ResultsBlock carries the raw per-series output with the axes needed to
// interpret the vectors.
type ResultsBlock struct {
	Periods         []string              `json:"periods"`
	ForecastPeriods []string              `json:"forecast_periods"`
	Series          []domain.SeriesResult `json:"series"`
}

// Diagnostics describe how a run was executed.
type Diagnostics struct {
	RunID          string `json:"run_id"`
	ModelRequested string `json:"model_requested"`
	ModelUsed      string `json:"model_used"`
	ElapsedMs      int64  `json:"elapsed_ms"`
	SeriesTotal    int    `json:"series_total"`
	SeriesFailed   int    `json:"series_failed"`
}

// ModelInfo describes one entry of the model catalog.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Default     bool   `json:"default"`
}

// Catalog lists the models a request may name. Only the baseline engine is
// served locally; the advanced models belong to the external modeling
// service and are listed for interface compatibility.
func Catalog() []ModelInfo {
	return []ModelInfo{
		{Name: ModelBaseline, Description: "Linear trend with multiplicative seasonality and IQR outlier clipping", Available: true, Default: true},
		{Name: "prophet", Description: "Prophet trend/seasonality model (external modeling service)", Available: false},
		{Name: "holtwinters", Description: "Holt-Winters triple exponential smoothing (external modeling service)", Available: false},
		{Name: "sarimax", Description: "SARIMAX statistical model (external modeling service)", Available: false},
		{Name: "ml_cluster", Description: "Gradient boosted trees over SKU clusters (external modeling service)", Available: false},
		{Name: "ensemble", Description: "Weighted ensemble of the advanced models (external modeling service)", Available: false},
	}
}

// ValidationError marks a request that must be rejected outright, as
// opposed to a per-series problem that only degrades one result.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
