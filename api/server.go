/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zerolog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests, origins from config

ROUTE GROUPS:
  /api/licenses/*       Roster, windows, analysis, reports, records
  /api/alerts           Renewal alerts
  /api/stats            Roster statistics
  /api/scenarios/*      Demo scenarios
  /healthz              Liveness probe
  /metrics              Prometheus metrics

SECURITY NOTE:
  No authentication middleware. All endpoints are public; deploy behind
  a gateway if that matters for your roster.

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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger zerolog.Logger, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// License routes
		r.Route("/licenses", func(r chi.Router) {
			r.Get("/", h.ListLicenses)
			r.Post("/", h.SaveLicense)
			r.Route("/{number}", func(r chi.Router) {
				r.Get("/", h.GetLicense)
				r.Delete("/", h.DeleteLicense)
				r.Get("/windows", h.ListWindows)
				r.Get("/windows/current", h.CurrentPeriod)
				r.Post("/analyze", h.AnalyzeCustomWindow)
				r.Get("/report", h.GetReport)
				r.Route("/records", func(r chi.Router) {
					r.Get("/", h.ListCourses)
					r.Post("/", h.AddCourse)
					r.Delete("/{id}", h.DeleteCourse)
				})
			})
		})

		// Monitoring routes
		r.Get("/alerts", h.ListAlerts)
		r.Get("/stats", h.GetStats)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// requestLogger attaches a request-scoped logger to the context and
// emits one line per completed request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()

			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", middleware.GetReqID(req.Context())).
				Logger()

			ctx := reqLogger.WithContext(req.Context())
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req.WithContext(ctx))

			reqLogger.Info().
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
