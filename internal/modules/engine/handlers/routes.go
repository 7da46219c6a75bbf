package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers the forecast routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		// Large portfolios take a while; give the engine room to finish.
		r.With(middleware.Timeout(120 * time.Second)).Post("/forecast", h.HandleForecast)
		r.Get("/models", h.HandleGetModels)
	})
}
