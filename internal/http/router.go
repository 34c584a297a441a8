package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the control API routes and returns the handler with
// middleware applied.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)

	r.Get("/healthz", app.healthHandler)
	r.Get("/status", app.statusHandler)
	r.Post("/connect", app.connectHandler)
	r.Post("/disconnect", app.disconnectHandler)
	r.Post("/auto", app.autoHandler)
	r.Put("/focus", app.focusHandler)
	r.Post("/orders", app.ordersHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}
