package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.corsMiddleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/report", s.handleReport)

		// Run lifecycle.
		r.Route("/run", func(r chi.Router) {
			r.Post("/start", s.handleRunStart)
			r.Post("/cleanup", s.handleRunCleanup)
		})

		// Sample ingestion.
		r.Route("/samples", func(r chi.Router) {
			if s.cfg.RateLimit.Enabled {
				r.Use(s.rateLimitMiddleware(s.cfg.RateLimit))
			}

			r.Post("/spec", s.handleSpecSample)
			r.Post("/test", s.handleTestSample)
			r.Post("/batch", s.handleBatch)
		})
	})

	return r
}
