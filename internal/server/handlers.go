package server

import (
	"encoding/json"
	"net/http"
)

// handleRoot describes the service
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "salescast",
		"version": "1.0.0",
		"status":  "ok",
		"endpoints": []string{
			"POST /api/forecast",
			"GET /api/models",
			"GET /api/runs",
			"GET /api/runs/{id}",
			"DELETE /api/runs/{id}",
			"POST /api/runs/{id}/archive",
			"GET /api/events/ws",
			"GET /api/health",
			"GET /api/system/status",
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleHealth handles health check requests, including a database ping
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.HealthCheck(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "degraded",
			"database": err.Error(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"database": "ok",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
