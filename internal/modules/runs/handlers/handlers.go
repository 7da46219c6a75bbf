// Package handlers provides HTTP handlers for stored forecast runs.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/salescast/internal/modules/archive"
	"github.com/aristath/salescast/internal/modules/engine"
	"github.com/aristath/salescast/internal/modules/runs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Archiver uploads a stored run payload to long-term storage.
type Archiver interface {
	ArchiveRun(ctx context.Context, id string) (*archive.Location, error)
}

// Handler handles run history HTTP requests
type Handler struct {
	store    *runs.Store
	archiver Archiver
	log      zerolog.Logger
}

// NewHandler creates a new runs handler. archiver may be nil when no
// bucket is configured.
func NewHandler(store *runs.Store, archiver Archiver, log zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		archiver: archiver,
		log:      log.With().Str("handler", "runs").Logger(),
	}
}

// ListResponse wraps a run listing.
type ListResponse struct {
	Runs  []runs.Run `json:"runs"`
	Count int        `json:"count"`
}

// DetailResponse is a run summary together with its stored forecast
// response.
type DetailResponse struct {
	Run      *runs.Run                `json:"run"`
	Response *engine.ForecastResponse `json:"response"`
}

// ArchiveResponse reports where a run payload was uploaded.
type ArchiveResponse struct {
	RunID  string `json:"run_id"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// HandleListRuns handles GET /api/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	list, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list runs")
		h.writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Runs: list, Count: len(list)})
}

// HandleGetRun handles GET /api/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run")
		h.writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	blob, err := h.store.GetPayload(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run payload")
		h.writeError(w, http.StatusInternalServerError, "Failed to get run payload")
		return
	}

	detail := DetailResponse{Run: run}
	if blob != nil {
		var response engine.ForecastResponse
		if err := runs.DecodePayload(blob, &response); err != nil {
			h.log.Error().Err(err).Str("run_id", id).Msg("Failed to decode run payload")
			h.writeError(w, http.StatusInternalServerError, "Failed to decode run payload")
			return
		}
		detail.Response = &response
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// HandleDeleteRun handles DELETE /api/runs/{id}
func (h *Handler) HandleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to delete run")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete run")
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	h.log.Info().Str("run_id", id).Msg("Run deleted")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "run_id": id})
}

// HandleArchiveRun handles POST /api/runs/{id}/archive
func (h *Handler) HandleArchiveRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.archiver == nil {
		h.writeError(w, http.StatusConflict, "Archiving is not configured (no bucket)")
		return
	}

	run, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run")
		h.writeError(w, http.StatusInternalServerError, "Failed to get run")
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	location, err := h.archiver.ArchiveRun(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("Failed to archive run")
		h.writeError(w, http.StatusInternalServerError, "Failed to archive run: "+err.Error())
		return
	}

	h.log.Info().Str("run_id", id).Str("bucket", location.Bucket).Str("key", location.Key).Msg("Run archived")
	h.writeJSON(w, http.StatusOK, ArchiveResponse{RunID: id, Bucket: location.Bucket, Key: location.Key})
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
