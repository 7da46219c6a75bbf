package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/salescast/internal/modules/engine"
	"github.com/aristath/salescast/internal/modules/runs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestHandler(t *testing.T) (*Handler, *runs.Store, *sql.DB) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	log := zerolog.Nop()
	store := runs.NewStore(db, log)
	require.NoError(t, store.Init())

	service := engine.NewService(engine.NewWorkerPool(2), nil, engine.Defaults{}, log)
	return NewHandler(service, store, log), store, db
}

func validRequest() engine.ForecastRequest {
	periods := []string{
		"2023-01", "2023-02", "2023-03", "2023-04", "2023-05", "2023-06",
		"2023-07", "2023-08", "2023-09", "2023-10", "2023-11", "2023-12",
	}
	values := make(map[string]float64, len(periods))
	for _, p := range periods {
		values[p] = 100
	}
	return engine.ForecastRequest{
		Periods:        periods,
		Cutoff:         "2023-12",
		ForecastMonths: 3,
		Model:          engine.ModelBaseline,
		Clients: []engine.ClientPayload{
			{Code: "C001", Series: []engine.SeriesPayload{{ArticleCode: "A1", Values: values}}},
		},
	}
}

func postForecast(t *testing.T, h *Handler, request engine.ForecastRequest) *httptest.ResponseRecorder {
	body, err := json.Marshal(request)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/forecast", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleForecast(w, req)
	return w
}

func TestHandleForecast_Success(t *testing.T) {
	h, store, db := setupTestHandler(t)
	defer db.Close()

	w := postForecast(t, h, validRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	var response engine.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.NotEmpty(t, response.Diagnostics.RunID)
	assert.Equal(t, engine.ModelBaseline, response.Diagnostics.ModelUsed)
	assert.Equal(t, 1, response.Diagnostics.SeriesTotal)
	assert.InDelta(t, 1200.0, response.Summary.HistoricalTotal, 0.01)
	assert.Len(t, response.Results.ForecastPeriods, 3)

	// The run must be persisted with a decodable payload.
	saved, err := store.Get(context.Background(), response.Diagnostics.RunID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, engine.ModelBaseline, saved.Model)
	assert.Equal(t, 1, saved.Clients)

	blob, err := store.GetPayload(context.Background(), response.Diagnostics.RunID)
	require.NoError(t, err)
	require.NotNil(t, blob)

	var stored engine.ForecastResponse
	require.NoError(t, runs.DecodePayload(blob, &stored))
	assert.Equal(t, response.Summary.ForecastTotal, stored.Summary.ForecastTotal)
}

func TestHandleForecast_InvalidBody(t *testing.T) {
	h, _, db := setupTestHandler(t)
	defer db.Close()

	req := httptest.NewRequest("POST", "/api/forecast", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.HandleForecast(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "Invalid request body")
}

func TestHandleForecast_ValidationErrorNotPersisted(t *testing.T) {
	h, store, db := setupTestHandler(t)
	defer db.Close()

	request := validRequest()
	request.Clients = nil

	w := postForecast(t, h, request)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["error"])

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestHandleForecast_PersistFailureStillResponds(t *testing.T) {
	h, _, db := setupTestHandler(t)
	require.NoError(t, db.Close())

	w := postForecast(t, h, validRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	var response engine.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Diagnostics.RunID)
}

func TestHandleGetModels(t *testing.T) {
	h, _, db := setupTestHandler(t)
	defer db.Close()

	req := httptest.NewRequest("GET", "/api/models", nil)
	w := httptest.NewRecorder()
	h.HandleGetModels(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.Models)

	byName := make(map[string]engine.ModelInfo, len(response.Models))
	for _, m := range response.Models {
		byName[m.Name] = m
	}

	baseline, ok := byName[engine.ModelBaseline]
	require.True(t, ok)
	assert.True(t, baseline.Available)
	assert.True(t, baseline.Default)

	prophet, ok := byName["prophet"]
	require.True(t, ok)
	assert.False(t, prophet.Available)
}
