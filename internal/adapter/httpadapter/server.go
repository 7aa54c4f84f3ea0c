package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

// ForecastReader returns the stored hourly forecasts of one day.
type ForecastReader interface {
	ForecastsByDate(ctx context.Context, date time.Time) ([]domain.HourlyForecast, error)
}

// ReadinessChecks is ready only when every member is.
type ReadinessChecks []sharedobs.ReadinessChecker

func (rc ReadinessChecks) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range rc {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	forecasts  ForecastReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, readiness, metrics, and
// forecast routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, forecasts ForecastReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecasts: forecasts,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/forecasts", s.handleForecasts)
	mux.HandleFunc("GET /api/v1/forecasts/mobile", s.handleMobileForecasts)

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

// handleForecasts serves the hourly forecast of ?date=YYYY-MM-DD, today by default.
func (s *Server) handleForecasts(w http.ResponseWriter, r *http.Request) {
	if forecasts, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, domain.ToDTOs(forecasts))
	}
}

// handleMobileForecasts serves the same day with millisecond timestamps.
func (s *Server) handleMobileForecasts(w http.ResponseWriter, r *http.Request) {
	if forecasts, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, domain.ToMobileDTOs(forecasts))
	}
}

// lookup resolves ?date and reads the stored day. On failure it has already
// written the error response.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) ([]domain.HourlyForecast, bool) {
	date := domain.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return nil, false
		}
		date = parsed
	}

	forecasts, err := s.forecasts.ForecastsByDate(r.Context(), date)
	if err != nil {
		s.logger.Error("read forecasts", "date", date.Format(domain.DateLayout), "error", err)
		writeError(w, http.StatusInternalServerError, "forecast lookup failed")
		return nil, false
	}
	if len(forecasts) == 0 {
		writeError(w, http.StatusNotFound, "no forecast for "+date.Format(domain.DateLayout))
		return nil, false
	}
	return forecasts, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
