// Package engine orchestrates a forecast run: request validation, period
// axis alignment, parallel per-series computation and the final reduction
// into the response payload.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/salescast/internal/domain"
	"github.com/aristath/salescast/internal/events"
	"github.com/aristath/salescast/internal/modules/calendar"
	"github.com/aristath/salescast/internal/modules/forecast"
	"github.com/aristath/salescast/internal/modules/lifecycle"
	"github.com/aristath/salescast/internal/modules/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxForecastMonths bounds the forecast horizon of a single request.
const MaxForecastMonths = 24

// Defaults are deployment-level knobs a request may override per call.
type Defaults struct {
	DormancyThreshold int
	TopN              int
	HoldoutSize       int
}

func (d Defaults) withFallbacks() Defaults {
	if d.DormancyThreshold < 1 {
		d.DormancyThreshold = lifecycle.DefaultDormancyThreshold
	}
	if d.TopN < 1 {
		d.TopN = report.DefaultTopN
	}
	if d.HoldoutSize < 1 {
		d.HoldoutSize = forecast.DefaultHoldoutSize
	}
	return d
}

// Service runs forecasts. Per-series computation happens on the worker
// pool; everything before and after is sequential.
type Service struct {
	pool     *WorkerPool
	bus      *events.Bus
	defaults Defaults
	log      zerolog.Logger
}

// NewService creates a forecast service. The bus may be nil when no
// subscriber cares about run events.
func NewService(pool *WorkerPool, bus *events.Bus, defaults Defaults, log zerolog.Logger) *Service {
	return &Service{
		pool:     pool,
		bus:      bus,
		defaults: defaults.withFallbacks(),
		log:      log.With().Str("component", "engine").Logger(),
	}
}

// Run executes one forecast request end to end. Validation failures return
// a *ValidationError and nothing else; per-series failures degrade the
// affected series and the run still succeeds.
func (s *Service) Run(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	start := time.Now()
	runID := uuid.NewString()

	warnings := []string{}
	modelUsed := ModelBaseline
	modelRequested := req.Model
	if modelRequested == "" {
		modelRequested = ModelBaseline
	}
	if modelRequested != ModelBaseline {
		warnings = append(warnings, fmt.Sprintf("model %q is not available, using %s", modelRequested, ModelBaseline))
	}

	axis, err := s.validate(req)
	if err != nil {
		s.emit(&events.RunFailedData{RunID: runID, Reason: err.Error()})
		s.log.Warn().Err(err).Str("run_id", runID).Msg("Forecast request rejected")
		return nil, err
	}

	jobs := alignSeries(req.Clients, axis.periods)
	s.emit(&events.RunStartedData{
		RunID:   runID,
		Model:   modelUsed,
		Clients: len(req.Clients),
		Series:  len(jobs),
	})

	opts := s.resolveOptions(req.Options)
	params := computeParams{
		horizon:           req.ForecastMonths,
		cutoffIndex:       axis.cutoffIndex,
		dormancyThreshold: opts.DormancyThreshold,
		forecastOpts:      forecast.Options{HoldoutSize: opts.HoldoutSize},
	}

	results, failed := s.pool.ForecastBatch(jobs, params)
	if err := ctx.Err(); err != nil {
		s.emit(&events.RunFailedData{RunID: runID, Reason: err.Error()})
		return nil, err
	}
	if failed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d series failed and were degraded to closed", failed))
	}

	historyPeriods := axis.periods[:axis.cutoffIndex+1]
	historyChart := report.HistoryChart(historyPeriods, sumByPeriod(jobs, axis.cutoffIndex+1))
	forecastAxis := calendar.ForecastAxis(axis.periods[axis.cutoffIndex], req.ForecastMonths)

	summary := report.Portfolio(results, len(req.Clients))
	elapsed := time.Since(start)

	response := &ForecastResponse{
		Summary:       summary,
		HistoryChart:  historyChart,
		HistoryTrend:  report.HistoryTrend(historyChart),
		ForecastChart: report.ForecastChart(forecastAxis, results),
		TopSeries:     report.TopSeries(results, opts.TopN),
		Clients:       report.ClientSummaries(results),
		Results: ResultsBlock{
			Periods:         periodKeys(axis.periods),
			ForecastPeriods: periodKeys(forecastAxis),
			Series:          results,
		},
		Diagnostics: Diagnostics{
			RunID:          runID,
			ModelRequested: modelRequested,
			ModelUsed:      modelUsed,
			ElapsedMs:      elapsed.Milliseconds(),
			SeriesTotal:    len(results),
			SeriesFailed:   failed,
		},
		Warnings: warnings,
	}

	s.emit(&events.RunCompletedData{
		RunID:         runID,
		ElapsedMs:     elapsed.Milliseconds(),
		SeriesTotal:   len(results),
		SeriesFailed:  failed,
		ForecastTotal: summary.ForecastTotal,
		GrowthPct:     summary.GrowthPct,
	})
	s.log.Info().
		Str("run_id", runID).
		Int("clients", len(req.Clients)).
		Int("series", len(results)).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("Forecast run completed")

	return response, nil
}

// periodAxis is the parsed shared time axis of a request.
type periodAxis struct {
	periods     []calendar.Period
	cutoffIndex int
}

func (s *Service) validate(req ForecastRequest) (periodAxis, error) {
	if len(req.Clients) == 0 {
		return periodAxis{}, &ValidationError{Reason: "no clients provided"}
	}
	if len(req.Periods) == 0 {
		return periodAxis{}, &ValidationError{Reason: "no periods provided"}
	}
	if req.ForecastMonths < 1 || req.ForecastMonths > MaxForecastMonths {
		return periodAxis{}, &ValidationError{
			Reason: fmt.Sprintf("forecast_months must be between 1 and %d", MaxForecastMonths),
		}
	}

	periods, err := calendar.ParsePeriods(req.Periods)
	if err != nil {
		return periodAxis{}, &ValidationError{Reason: err.Error()}
	}

	cutoff, err := calendar.ParsePeriod(req.Cutoff)
	if err != nil {
		return periodAxis{}, &ValidationError{Reason: fmt.Sprintf("invalid cutoff: %v", err)}
	}

	cutoffIndex := -1
	for i, p := range periods {
		if p == cutoff {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex < 0 {
		return periodAxis{}, &ValidationError{
			Reason: fmt.Sprintf("cutoff %q is not among the submitted periods", req.Cutoff),
		}
	}

	return periodAxis{periods: periods, cutoffIndex: cutoffIndex}, nil
}

func (s *Service) resolveOptions(opts RequestOptions) Defaults {
	resolved := s.defaults
	if opts.DormancyThreshold > 0 {
		resolved.DormancyThreshold = opts.DormancyThreshold
	}
	if opts.TopN > 0 {
		resolved.TopN = opts.TopN
	}
	if opts.HoldoutSize > 0 {
		resolved.HoldoutSize = opts.HoldoutSize
	}
	return resolved
}

func (s *Service) emit(data events.EventData) {
	if s.bus == nil {
		return
	}
	s.bus.Emit("engine", data)
}

// alignSeries flattens the submitted clients into jobs whose value slices
// all share the request period axis. Periods a series does not mention
// become explicit zeros.
func alignSeries(clients []ClientPayload, periods []calendar.Period) []seriesJob {
	keys := periodKeys(periods)

	jobs := make([]seriesJob, 0)
	for _, client := range clients {
		for _, payload := range client.Series {
			series := domain.Series{
				ClientCode:    client.Code,
				ArticleCode:   payload.ArticleCode,
				Values:        payload.Values,
				MaterialGroup: payload.MaterialGroup,
				Brand:         payload.Brand,
				BusinessLine:  payload.BusinessLine,
			}

			values := make([]float64, len(keys))
			for i, key := range keys {
				values[i] = series.ValueAt(key)
			}

			jobs = append(jobs, seriesJob{
				clientCode:    series.ClientCode,
				articleCode:   series.ArticleCode,
				materialGroup: series.MaterialGroup,
				brand:         series.Brand,
				businessLine:  series.BusinessLine,
				values:        values,
			})
		}
	}
	return jobs
}

// sumByPeriod totals the aligned values across all jobs for the first n
// periods of the axis.
func sumByPeriod(jobs []seriesJob, n int) []float64 {
	totals := make([]float64, n)
	for _, job := range jobs {
		for i := 0; i < n && i < len(job.values); i++ {
			totals[i] += job.values[i]
		}
	}
	return totals
}

func periodKeys(periods []calendar.Period) []string {
	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = p.String()
	}
	return keys
}
