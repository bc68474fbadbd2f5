// Package http serves the dashboard API alongside health, readiness and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crime-insights-service/internal/dashboard"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dashboard is the set of views the API exposes.
type Dashboard interface {
	ReadinessChecker
	Options(ctx context.Context) (dashboard.FilterOptions, error)
	Areas(ctx context.Context, f domain.Filter) ([]domain.AreaCount, error)
	Hourly(ctx context.Context, f domain.Filter, dense bool) ([]domain.HourCount, error)
	Weekly(ctx context.Context, f domain.Filter) ([]domain.WeekdayCount, error)
	Seasons(ctx context.Context, f domain.Filter) ([]domain.SeasonShare, error)
	Monthly(ctx context.Context, f domain.Filter, category string) (dashboard.MonthlyTrend, error)
	Geo(ctx context.Context, f domain.Filter, categories []string) ([]domain.GeoPoint, error)
	Predict(ctx context.Context, in domain.PredictionInput) (dashboard.Prediction, error)
	Reload(ctx context.Context) (dashboard.ReloadResult, error)
}

// Server exposes the dashboard API plus /healthz, /readyz and /metrics.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(addr string, d Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           requestID(accessLog(logger, mux)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			// The first request may wait on a full dataset download.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: d,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(d))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/options", s.handleOptions)
	mux.HandleFunc("GET /api/v1/areas", s.handleAreas)
	mux.HandleFunc("GET /api/v1/hourly", s.handleHourly)
	mux.HandleFunc("GET /api/v1/weekly", s.handleWeekly)
	mux.HandleFunc("GET /api/v1/seasons", s.handleSeasons)
	mux.HandleFunc("GET /api/v1/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/v1/geo", s.handleGeo)
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)
	mux.HandleFunc("POST /api/v1/dataset/reload", s.handleReload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
