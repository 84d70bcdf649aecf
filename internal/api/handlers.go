// Package api exposes the analysis engine over HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockpredictions/internal/analyzer"
	"stockpredictions/internal/insight"
	"stockpredictions/internal/metrics"
	sqlitestore "stockpredictions/internal/store/sqlite"
	"stockpredictions/pkg/fmp"
)

const requestTimeout = 30 * time.Second

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	svc      *analyzer.Service
	db       *sqlitestore.Store
	provider *fmp.Client
	hub      *Hub
	health   *metrics.HealthStatus
	log      *slog.Logger
}

// NewServer builds the handler set. hub and health may be nil; the
// corresponding endpoints degrade gracefully.
func NewServer(svc *analyzer.Service, db *sqlitestore.Store, provider *fmp.Client,
	hub *Hub, health *metrics.HealthStatus, log *slog.Logger) *Server {
	return &Server{svc: svc, db: db, provider: provider, hub: hub, health: health, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathSymbol extracts the trailing symbol from e.g. /api/v1/analysis/AAPL.
func pathSymbol(path, prefix string) string {
	sym := strings.TrimPrefix(path, prefix)
	sym = strings.Trim(sym, "/")
	if sym == "" || strings.Contains(sym, "/") {
		return ""
	}
	return strings.ToUpper(sym)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		s.health.ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalysis runs (or serves the cached) analysis for one symbol.
//
//	GET /api/v1/analysis/{symbol}?refresh=1&compact=1&bars=250
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := pathSymbol(r.URL.Path, "/api/v1/analysis")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	opts := analyzer.Options{
		ForceRefresh: r.URL.Query().Get("refresh") == "1",
	}
	if v := r.URL.Query().Get("bars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bars must be a positive integer")
			return
		}
		opts.Bars = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.svc.AnalyzeSymbol(ctx, symbol, opts)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, fmp.ErrNoData) {
			status = http.StatusNotFound
		}
		s.log.Warn("analysis request failed", "symbol", symbol, "err", err)
		writeError(w, status, err.Error())
		return
	}

	if r.URL.Query().Get("compact") == "1" {
		writeJSON(w, http.StatusOK, insight.Compact(result, insight.Options{}))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSignals serves the most recent stored signals for a symbol.
//
//	GET /api/v1/signals/{symbol}?limit=50
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	symbol := pathSymbol(r.URL.Path, "/api/v1/signals")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	signals, err := s.db.RecentSignals(r.Context(), symbol, limit)
	if err != nil {
		s.log.Warn("signal lookup failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, "signal lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"signals": signals,
	})
}

// handleQuote proxies a real-time quote from the provider.
//
//	GET /api/v1/quote/{symbol}
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := pathSymbol(r.URL.Path, "/api/v1/quote")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	quote, err := s.provider.GetQuote(ctx, symbol)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, fmp.ErrNoData) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleStream upgrades to WebSocket for live signal delivery.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "streaming is not enabled")
		return
	}
	s.hub.ServeWS(w, r)
}
