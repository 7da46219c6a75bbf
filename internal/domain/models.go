// Package domain provides core domain models and types.
package domain

// SeriesStatus represents the lifecycle state of a sales series
type SeriesStatus string

const (
	// StatusActive represents a series with enough recent activity to forecast
	StatusActive SeriesStatus = "active"
	// StatusClosed represents a dormant series (no recent activity), forecast as zero
	StatusClosed SeriesStatus = "closed"
	// StatusInsufficientData represents a series that never started before the
	// cutoff, or has too few active points for a trend fit
	StatusInsufficientData SeriesStatus = "insufficient_data"
)

// IsClosed checks if this status marks a dormant series
func (s SeriesStatus) IsClosed() bool {
	return s == StatusClosed
}

// IsActive checks if this status marks a fully forecastable series
func (s SeriesStatus) IsActive() bool {
	return s == StatusActive
}

// Series represents one client-article pair's monthly sales history.
// Values maps period keys ("YYYY-MM") to revenue; a period absent from the
// map means zero for that month. Immutable once ingested.
type Series struct {
	ClientCode    string             `json:"client_code"`
	ArticleCode   string             `json:"article_code"`
	Values        map[string]float64 `json:"values"`
	MaterialGroup string             `json:"material_group,omitempty"`
	Brand         string             `json:"brand,omitempty"`
	BusinessLine  string             `json:"business_line,omitempty"`
}

// Key returns the stable composite identifier for the series
func (s Series) Key() string {
	return s.ClientCode + "/" + s.ArticleCode
}

// ValueAt returns the value for a period, applying the absent-means-zero contract
func (s Series) ValueAt(period string) float64 {
	return s.Values[period]
}

// Client groups the series sharing a client code
type Client struct {
	Code   string   `json:"code"`
	Series []Series `json:"series"`
}

// SeriesResult is the derived, read-only record produced once per series.
// ErrorPct is nil when the fit error could not be measured (degenerate series,
// or no positive holdout actuals) - nil is not a zero error.
type SeriesResult struct {
	ClientCode    string       `json:"client_code"`
	ArticleCode   string       `json:"article_code"`
	MaterialGroup string       `json:"material_group,omitempty"`
	Brand         string       `json:"brand,omitempty"`
	BusinessLine  string       `json:"business_line,omitempty"`
	Status        SeriesStatus `json:"status"`
	LastValue     float64      `json:"last_value"`
	Forecast      []float64    `json:"forecast"`
	VariationPct  float64      `json:"variation_pct"`
	ErrorPct      *float64     `json:"error_pct"`
}

// FirstForecast returns the first forecast-period value, or 0 for an empty vector
func (r SeriesResult) FirstForecast() float64 {
	if len(r.Forecast) == 0 {
		return 0
	}
	return r.Forecast[0]
}

// ClientSummary aggregates the results of one client's series
type ClientSummary struct {
	Code            string  `json:"code"`
	HistoricalTotal float64 `json:"historical_total"`
	ForecastTotal   float64 `json:"forecast_total"`
	GrowthPct       float64 `json:"growth_pct"`
	SeriesCount     int     `json:"series_count"`
	ActiveSeries    int     `json:"active_series"`
}

// PortfolioSummary aggregates all series results across all clients
type PortfolioSummary struct {
	HistoricalTotal float64 `json:"historical_total"`
	ForecastTotal   float64 `json:"forecast_total"`
	GrowthPct       float64 `json:"growth_pct"`
	ActiveClients   int     `json:"active_clients"`
	TotalClients    int     `json:"total_clients"`
	ActiveSeries    int     `json:"active_series"`
	TotalSeries     int     `json:"total_series"`
}

// ChartPoint is a single chart-ready data point aligned to a period.
// BusinessDayRatio is only populated on history points (year-over-year
// working-day ratio, contextual metadata only).
type ChartPoint struct {
	Period           string  `json:"period"`
	Label            string  `json:"label"`
	Value            float64 `json:"value"`
	BusinessDayRatio float64 `json:"business_day_ratio,omitempty"`
}
