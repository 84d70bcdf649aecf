package api

import (
	"net/http"
)

// NewRouter mounts the HTTP routes onto a fresh mux.
func NewRouter(s *Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/analysis/", s.handleAnalysis)
	mux.HandleFunc("/api/v1/signals/", s.handleSignals)
	mux.HandleFunc("/api/v1/quote/", s.handleQuote)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	return mux
}
