package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RunStartedData contains data for RunStarted events
type RunStartedData struct {
	RunID   string `json:"run_id"`
	Model   string `json:"model"`
	Clients int    `json:"clients"`
	Series  int    `json:"series"`
}

// EventType returns the event type for RunStartedData
func (d *RunStartedData) EventType() EventType {
	return RunStarted
}

// RunCompletedData contains data for RunCompleted events
type RunCompletedData struct {
	RunID         string  `json:"run_id"`
	ElapsedMs     int64   `json:"elapsed_ms"`
	SeriesTotal   int     `json:"series_total"`
	SeriesFailed  int     `json:"series_failed"`
	ForecastTotal float64 `json:"forecast_total"`
	GrowthPct     float64 `json:"growth_pct"`
}

// EventType returns the event type for RunCompletedData
func (d *RunCompletedData) EventType() EventType {
	return RunCompleted
}

// RunFailedData contains data for RunFailed events
type RunFailedData struct {
	RunID  string `json:"run_id,omitempty"`
	Reason string `json:"reason"`
}

// EventType returns the event type for RunFailedData
func (d *RunFailedData) EventType() EventType {
	return RunFailed
}

// RunArchivedData contains data for RunArchived events
type RunArchivedData struct {
	RunID  string `json:"run_id"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// EventType returns the event type for RunArchivedData
func (d *RunArchivedData) EventType() EventType {
	return RunArchived
}
