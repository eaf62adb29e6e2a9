package server

import (
	"net/http"

	"github.com/casavia/casavia/internal/api"
	"github.com/casavia/casavia/internal/api/handlers"
	"github.com/casavia/casavia/internal/api/middleware"
	"github.com/casavia/casavia/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	PropertyHandler  *handlers.PropertyHandler
	InquiryHandler   *handlers.InquiryHandler
	PhotoHandler     *handlers.PhotoHandler
	DashboardHandler *handlers.DashboardHandler
}

// NewRouter wires the public search surface and the authenticated agent
// surface onto one chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(metrics.Middleware())
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public browse surface. No credentials; only active listings are
	// reachable through search.
	r.Get("/properties", cfg.PropertyHandler.List)
	r.Get("/properties/{id}", cfg.PropertyHandler.Get)
	r.Get("/properties/{id}/similar", cfg.PropertyHandler.Similar)
	r.Get("/properties/{id}/photos/download", cfg.PhotoHandler.GetDownloadURL)
	r.Post("/properties/{id}/inquiries", cfg.InquiryHandler.Create)

	// Agent surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Post("/properties", cfg.PropertyHandler.Create)
		r.Put("/properties/{id}", cfg.PropertyHandler.Update)
		r.Delete("/properties/{id}", cfg.PropertyHandler.Delete)

		r.Post("/properties/{id}/photos/init", cfg.PhotoHandler.InitUpload)
		r.Post("/properties/{id}/photos/complete", cfg.PhotoHandler.CompleteUpload)

		r.Get("/my/properties", cfg.PropertyHandler.ListOwn)
		r.Get("/inquiries", cfg.InquiryHandler.List)
		r.Patch("/inquiries/{id}", cfg.InquiryHandler.UpdateStatus)
		r.Get("/dashboard", cfg.DashboardHandler.Summary)
	})

	return r
}
