// Package metrics registers Prometheus metrics for the analysis service and
// serves them together with a JSON health endpoint.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analysis service.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	AnalysisDuration prometheus.Histogram
	SignalsTotal     *prometheus.CounterVec // labels: indicator, signal
	FamilyFailures   *prometheus.CounterVec // labels: family

	// Price source
	ProviderRequests *prometheus.CounterVec // labels: endpoint, status
	ProviderDuration prometheus.Histogram

	// Stores
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	SQLiteCommitDur prometheus.Histogram

	// WebSocket push
	StreamClients prometheus.Gauge
	StreamDropped prometheus.Counter
	SignalsPushed prometheus.Counter
	AlertsSent    *prometheus.CounterVec // labels: backend
	AlertsFailed  *prometheus.CounterVec // labels: backend
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Total technical analysis runs",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Duration of one full analysis run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_signals_total",
			Help: "Signals generated, by indicator and direction",
		}, []string{"indicator", "signal"}),
		FamilyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_family_failures_total",
			Help: "Indicator family computation failures",
		}, []string{"family"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Price provider HTTP requests, by endpoint and status",
		}, []string{"endpoint", "status"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Price provider request latency",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analysis_cache_hits_total",
			Help: "Analysis cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analysis_cache_misses_total",
			Help: "Analysis cache misses",
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stream_clients",
			Help: "Connected WebSocket stream clients",
		}),
		StreamDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_dropped_messages_total",
			Help: "Messages dropped on slow WebSocket clients",
		}),
		SignalsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_signals_pushed_total",
			Help: "Signal events fanned out to WebSocket clients",
		}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "Strong-signal alerts delivered, by backend",
		}, []string{"backend"}),
		AlertsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_failed_total",
			Help: "Strong-signal alert delivery failures, by backend",
		}, []string{"backend"}),
	}

	prometheus.MustRegister(
		m.AnalysesTotal, m.AnalysisDuration, m.SignalsTotal, m.FamilyFailures,
		m.ProviderRequests, m.ProviderDuration,
		m.CacheHits, m.CacheMisses, m.SQLiteCommitDur,
		m.StreamClients, m.StreamDropped, m.SignalsPushed,
		m.AlertsSent, m.AlertsFailed,
	)
	return m
}

// HealthStatus tracks dependency health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected bool
	SQLiteOK       bool
	LastAnalysisAt time.Time

	RedisLatencyMs  float64
	SQLiteLatencyMs float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// SetLastAnalysisTime records the completion time of the latest run.
func (h *HealthStatus) SetLastAnalysisTime(t time.Time) {
	h.mu.Lock()
	h.LastAnalysisAt = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	} else if !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
	}

	lastAnalysis := ""
	if !h.LastAnalysisAt.IsZero() {
		lastAnalysis = h.LastAnalysisAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastAnalysisAt  string  `json:"last_analysis_at"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastAnalysisAt:  lastAnalysis,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
