// Package site serves the static assets of the dashboard.
package site

import (
	"context"
	"net/http"
)

// Register attaches the asset and root routes to mux.
//
//	GET /          -> redirect to /dashboard
//	GET /assets/*  -> embedded dashboard.js, dashboard.css
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(FS())))
	mux.HandleFunc("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot sends GET / to the dashboard; any other unmatched path is 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
