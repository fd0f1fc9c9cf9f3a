// Package server exposes the accounting engine over HTTP. The surface
// mirrors the product API: survey onboarding, logging of
// already-classified activities, the per-user dashboard, and the
// collective stats feed. Natural-language classification stays with
// the external collaborator; this server only accepts structured
// input.
package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rshade/carbonbuddy/internal/tracker"
)

// Server holds the HTTP handler state.
type Server struct {
	tracker *tracker.Tracker
	log     zerolog.Logger
}

// New creates a server over the given tracker.
func New(trk *tracker.Tracker, log zerolog.Logger) *Server {
	return &Server{tracker: trk, log: log}
}

// Handler builds the routed, middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/onboard-quick", s.handleOnboardQuick)
	mux.HandleFunc("POST /api/log", s.handleLog)
	mux.HandleFunc("GET /api/dashboard/{user_id}", s.handleDashboard)
	mux.HandleFunc("GET /api/stats/global", s.handleGlobalStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.accessLog(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
