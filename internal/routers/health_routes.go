package routers

import (
	"net/http"

	"codetutor/ai/internal/handlers"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
}

// MetricsRoute mounts the Prometheus scrape endpoint.
func MetricsRoute(router *chi.Mux, handler http.Handler) {
	router.Method(http.MethodGet, "/metrics", handler)
}
