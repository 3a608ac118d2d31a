package server

import "github.com/go-chi/chi/v5"

// SetupRoutes registers the status API routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/healthz", h.Health)

	router.Route("/api", func(r chi.Router) {
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/latest", h.LatestRun)
		r.Get("/runs/{id}", h.GetRun)
		r.Get("/coverage", h.Coverage)
	})
}
