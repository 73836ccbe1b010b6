/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request log (level by status) + request counter
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/types/*          Date range types and presets
  /api/ranges/*         Date ranges
  /api/generator/*      Bulk generation
  /api/entries/*        Entries filtered by period
  /api/admin/*          Autogeneration sweep
  /api/health           Database ping
  /metrics              Prometheus

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/daterange-engine/metrics"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins allows every origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Type routes
		r.Route("/types", func(r chi.Router) {
			r.Get("/", h.ListTypes)
			r.Post("/", h.CreateType)
			r.Get("/presets", h.ListPresets)
			r.Post("/presets/{preset}", h.CreatePreset)
			r.Get("/{id}", h.GetType)
			r.Get("/{id}/defaults", h.TypeDefaults)
			r.Get("/{id}/preview", h.PreviewType)
		})

		// Range routes
		r.Route("/ranges", func(r chi.Router) {
			r.Get("/", h.ListRanges)
			r.Post("/", h.CreateRange)
			r.Get("/{id}", h.GetRange)
			r.Delete("/{id}", h.DeleteRange)
		})

		// Generator routes
		r.Route("/generator", func(r chi.Router) {
			r.Post("/preview", h.PreviewGenerator)
			r.Post("/apply", h.ApplyGenerator)
		})

		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/fields", h.EntryFields)
			r.Get("/export", h.ExportEntries)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/autogenerate", h.TriggerAutogeneration)
			r.Get("/autogenerate/runs", h.ListAutogenerationRuns)
		})
	})

	return r
}

// requestLogger logs each request once it is served: errors at error
// level, client errors at warn, the rest at debug.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				metrics.ObserveRequest(r.Method, status)

				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}
				switch {
				case status >= 500:
					logger.Error("request failed", fields...)
				case status >= 400:
					logger.Warn("request rejected", fields...)
				default:
					logger.Debug("request served", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
