// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/okian/catan/internal/domain/enrich"
	"github.com/okian/catan/internal/domain/model"
	"github.com/okian/catan/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
// A nil season means all seasons.
type Dependencies interface {
	Seasons(ctx context.Context) ([]int, error)
	Games(ctx context.Context, season *int) ([]model.GameRecord, error)
	Locations(ctx context.Context, season *int) (model.LocationMap, error)
	Standings(ctx context.Context, season *int) ([]model.Standing, error)
	Production(ctx context.Context, season *int) ([]model.ProductionRow, error)
	Progress(ctx context.Context, season *int) ([]model.ProgressSeries, error)
	RenderProgress(ctx context.Context, w io.Writer, season *int) error
	Issues(ctx context.Context) ([]model.Issue, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	leagueHandler    *LeagueHandler
	dashboardHandler *dashboardHandler
	limiter          *rate.Limiter
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRateLimit caps the rate of dataset requests; each one reads the workbook.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		leagueHandler:    NewLeagueHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	h := s.leagueHandler
	mux.HandleFunc("/seasons", s.dataset("seasons", h.HandleSeasons))
	mux.HandleFunc("/games", s.dataset("games", h.HandleGames))
	mux.HandleFunc("/locations", s.dataset("locations", h.HandleLocations))
	mux.HandleFunc("/standings", s.dataset("standings", h.HandleStandings))
	mux.HandleFunc("/production", s.dataset("production", h.HandleProduction))
	mux.HandleFunc("/progress", s.dataset("progress", h.HandleProgress))
	mux.HandleFunc("/progress.svg", s.dataset("progress_svg", h.HandleProgressSVG))
	mux.HandleFunc("/issues", s.dataset("issues", h.HandleIssues))
}

// dataset wraps a handler that loads the workbook.
func (s *Server) dataset(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return MetricsMiddleware(RequestIDMiddleware(RateLimitMiddleware(s.limiter, endpoint, next)), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching the response so that an encoding
// failure becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		metrics.RecordErrorByType("encode_failed", "error")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "encode_failed", Message: fmt.Errorf("%w: %v", ErrEncode, err).Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLoadError maps a dataset load failure to a response.
func writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case enrich.IsStructural(err):
		writeError(w, http.StatusUnprocessableEntity, "invalid_dataset", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "canceled", err)
	default:
		writeError(w, http.StatusInternalServerError, "load_failed", err)
	}
}

// parseSeason reads the optional ?season= parameter.
func parseSeason(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("season"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, raw)
	}
	return &n, nil
}
