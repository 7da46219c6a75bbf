// Package handlers provides the HTTP surface of the forecast engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/salescast/internal/modules/engine"
	"github.com/aristath/salescast/internal/modules/runs"
	"github.com/rs/zerolog"
)

// Handler handles forecast HTTP requests
type Handler struct {
	service *engine.Service
	store   *runs.Store
	log     zerolog.Logger
}

// NewHandler creates a new forecast handler
func NewHandler(service *engine.Service, store *runs.Store, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		log:     log.With().Str("handler", "forecast").Logger(),
	}
}

// ModelsResponse lists the model catalog.
type ModelsResponse struct {
	Models []engine.ModelInfo `json:"models"`
}

// HandleForecast handles POST /api/forecast
func (h *Handler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	var request engine.ForecastRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	startTime := time.Now()
	response, err := h.service.Run(r.Context(), request)
	elapsed := time.Since(startTime)

	if err != nil {
		var validationErr *engine.ValidationError
		if errors.As(err, &validationErr) {
			h.writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		h.log.Error().Err(err).Msg("Forecast run failed")
		h.writeError(w, http.StatusInternalServerError, "Forecast run failed: "+err.Error())
		return
	}

	h.persistRun(r.Context(), &request, response)

	h.log.Info().
		Str("run_id", response.Diagnostics.RunID).
		Int("clients", len(request.Clients)).
		Int("series", response.Diagnostics.SeriesTotal).
		Dur("elapsed", elapsed).
		Msg("Forecast request completed")

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetModels handles GET /api/models
func (h *Handler) HandleGetModels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ModelsResponse{Models: engine.Catalog()})
}

// persistRun stores the completed run. Persistence failures are logged and
// swallowed so the caller still receives the forecast.
func (h *Handler) persistRun(ctx context.Context, request *engine.ForecastRequest, response *engine.ForecastResponse) {
	if h.store == nil {
		return
	}

	run := runs.Run{
		ID:              response.Diagnostics.RunID,
		CreatedAt:       time.Now(),
		Model:           response.Diagnostics.ModelUsed,
		Clients:         len(request.Clients),
		SeriesTotal:     response.Diagnostics.SeriesTotal,
		SeriesFailed:    response.Diagnostics.SeriesFailed,
		HistoricalTotal: response.Summary.HistoricalTotal,
		ForecastTotal:   response.Summary.ForecastTotal,
		GrowthPct:       response.Summary.GrowthPct,
		ElapsedMs:       response.Diagnostics.ElapsedMs,
	}

	if err := h.store.Save(ctx, run, response); err != nil {
		h.log.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to persist run")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
