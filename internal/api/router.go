// Package api provides HTTP router setup.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/smartread/smartread/internal/config"
)

// NewRouter creates the bridge router with all routes configured.
func NewRouter(cfg *config.Config, handler *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			if cfg.Server.AuthToken != "" {
				r.Use(AuthMiddleware(cfg.Server.AuthToken))
			}
			if cfg.RateLimits.RequestsPerMinute > 0 {
				r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))
			}

			r.Post("/simplify", handler.Simplify)
			r.Post("/explain", handler.Explain)

			r.Get("/logs/{service}", handler.GetLogs)
			r.Delete("/logs/{service}", handler.ClearLogs)
			r.Get("/stats/{service}", handler.GetStats)

			r.Get("/keys", handler.ListKeys)
			r.Post("/keys", handler.SaveKey)
			r.Post("/keys/validate", handler.ValidateKey)
			r.Delete("/keys/{provider}", handler.DeleteKey)
		})
	})

	return r
}
