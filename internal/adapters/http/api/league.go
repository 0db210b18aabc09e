// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/okian/catan/internal/adapters/render"
)

// LeagueHandler serves the dataset endpoints.
type LeagueHandler struct {
	deps Dependencies
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps Dependencies) *LeagueHandler {
	return &LeagueHandler{deps: deps}
}

// season validates the method and the ?season= parameter. It writes the
// error response itself and reports whether the handler should continue.
func season(w http.ResponseWriter, r *http.Request) (*int, bool) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return nil, false
	}
	s, err := parseSeason(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return nil, false
	}
	return s, true
}

// HandleSeasons handles GET /seasons requests.
func (h *LeagueHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	seasons, err := h.deps.Seasons(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}

// HandleGames handles GET /games[?season=N] requests.
func (h *LeagueHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	games, err := h.deps.Games(r.Context(), s)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleLocations handles GET /locations[?season=N] requests.
func (h *LeagueHandler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	locs, err := h.deps.Locations(r.Context(), s)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locs)
}

// HandleStandings handles GET /standings[?season=N] requests.
func (h *LeagueHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	rows, err := h.deps.Standings(r.Context(), s)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleProduction handles GET /production[?season=N] requests.
func (h *LeagueHandler) HandleProduction(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	rows, err := h.deps.Production(r.Context(), s)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleProgress handles GET /progress[?season=N] requests.
func (h *LeagueHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	series, err := h.deps.Progress(r.Context(), s)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// HandleProgressSVG handles GET /progress.svg[?season=N] requests.
func (h *LeagueHandler) HandleProgressSVG(w http.ResponseWriter, r *http.Request) {
	s, ok := season(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.deps.RenderProgress(r.Context(), &buf, s); err != nil {
		if errors.Is(err, render.ErrNoData) {
			writeError(w, http.StatusNotFound, "no_data", err)
			return
		}
		writeLoadError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// HandleIssues handles GET /issues requests.
func (h *LeagueHandler) HandleIssues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	issues, err := h.deps.Issues(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issues)
}
