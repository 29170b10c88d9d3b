package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/product-description-generator/internal/metrics"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
// Request metrics are recorded when mw is not nil.
func NewRouter(app *App, mw *metrics.Middleware) http.Handler {
	router := chi.NewRouter()
	if mw != nil {
		router.Use(mw.Handler)
	}
	router.Use(
		WithRequestID,
		WithLogging,
		chiMiddleware.Recoverer,
	)

	router.Post("/descriptions/generate", app.generateHandler)
	router.Route("/runs", func(r chi.Router) {
		r.Post("/", app.submitRunHandler)
		r.Get("/", app.listRunsHandler)
		r.Get("/{id}", app.getRunHandler)
	})
	router.Get("/healthz", app.healthHandler)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Get("/openapi.yaml", app.openapiHandler)
	router.Get("/docs", app.docsHandler)
	return router
}
