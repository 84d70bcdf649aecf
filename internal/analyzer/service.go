// Package analyzer orchestrates a full analysis run for one symbol: load
// prices (SQLite history with provider backfill), run the indicator engine,
// persist and publish the result, and alert on strong signals.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stockpredictions/internal/engine"
	"stockpredictions/internal/logger"
	"stockpredictions/internal/metrics"
	"stockpredictions/internal/model"
	"stockpredictions/internal/notification"
	redisstore "stockpredictions/internal/store/redis"
	sqlitestore "stockpredictions/internal/store/sqlite"
	"stockpredictions/pkg/fmp"
)

// Options tunes a single analysis run.
type Options struct {
	// ForceRefresh bypasses the Redis cache and refetches prices from the
	// provider even when stored history looks fresh.
	ForceRefresh bool
	// Bars caps how much history feeds the engine. Zero means the service
	// default (250 bars, roughly one trading year).
	Bars int
}

const (
	defaultBars = 250
	// Stored history older than this triggers a provider refetch.
	staleAfter = 24 * time.Hour
)

// Service wires the engine to storage, the price provider, and alerting.
type Service struct {
	engine   *engine.Engine
	cache    *redisstore.Store
	db       *sqlitestore.Store
	provider *fmp.Client
	notifier notification.Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger

	// MinAlertStrength is the signal strength floor for notifications.
	MinAlertStrength float64

	// Health, when set, records the completion time of each successful run
	// for the health endpoint.
	Health *metrics.HealthStatus

	now func() time.Time
}

// New builds a Service. cache and notifier may be nil; the service degrades
// to uncached, alert-free operation.
func New(eng *engine.Engine, cache *redisstore.Store, db *sqlitestore.Store, provider *fmp.Client,
	notifier notification.Notifier, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		engine:           eng,
		cache:            cache,
		db:               db,
		provider:         provider,
		notifier:         notifier,
		metrics:          m,
		log:              log,
		MinAlertStrength: 0.75,
		now:              time.Now,
	}
}

// AnalyzeSymbol runs the full pipeline for one symbol.
func (s *Service) AnalyzeSymbol(ctx context.Context, symbol string, opts Options) (*model.TechnicalAnalysisResult, error) {
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(symbol, s.now()))

	if !opts.ForceRefresh && s.cache != nil {
		cached, err := s.cache.GetAnalysis(ctx, symbol)
		if err != nil {
			s.log.Warn("analysis cache read failed", append(logger.LogWithTrace(ctx), "symbol", symbol, "err", err)...)
		}
		if cached != nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return cached, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
	}

	bars := opts.Bars
	if bars <= 0 {
		bars = defaultBars
	}
	prices, err := s.loadPrices(ctx, symbol, bars, opts.ForceRefresh)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Analyze(prices, symbol)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	s.persist(ctx, result)
	s.alert(ctx, result)
	if s.Health != nil {
		s.Health.SetLastAnalysisTime(s.now())
	}
	return result, nil
}

// loadPrices serves stored history when it is fresh enough, refetching from
// the provider otherwise. Provider failures fall back to whatever history is
// stored.
func (s *Service) loadPrices(ctx context.Context, symbol string, bars int, force bool) ([]model.PriceData, error) {
	last, err := s.db.LastPriceDate(ctx, symbol)
	if err != nil {
		s.log.Warn("price freshness check failed", append(logger.LogWithTrace(ctx), "symbol", symbol, "err", err)...)
	}

	fresh := !last.IsZero() && s.now().Sub(last) < staleAfter
	if fresh && !force {
		stored, err := s.db.LoadPrices(ctx, symbol, bars)
		if err == nil && len(stored) > 0 {
			return stored, nil
		}
		if err != nil {
			s.log.Warn("stored price load failed", append(logger.LogWithTrace(ctx), "symbol", symbol, "err", err)...)
		}
	}

	start := s.now()
	fetched, err := s.provider.HistoricalPrices(ctx, symbol, bars)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.ProviderRequests.WithLabelValues("historical", status).Inc()
		s.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// Stale history beats no history.
		stored, loadErr := s.db.LoadPrices(ctx, symbol, bars)
		if loadErr == nil && len(stored) > 0 {
			s.log.Warn("provider fetch failed, serving stored history",
				append(logger.LogWithTrace(ctx), "symbol", symbol, "bars", len(stored), "err", err)...)
			return stored, nil
		}
		return nil, fmt.Errorf("fetch prices for %s: %w", symbol, err)
	}

	if err := s.db.SavePrices(ctx, symbol, fetched); err != nil {
		s.log.Warn("price persist failed", append(logger.LogWithTrace(ctx), "symbol", symbol, "err", err)...)
	}
	return fetched, nil
}

// persist writes the run to SQLite, caches it in Redis, and publishes the
// signals. All three are best-effort: a storage fault never fails the run.
func (s *Service) persist(ctx context.Context, result *model.TechnicalAnalysisResult) {
	start := s.now()
	if err := s.db.SaveAnalysis(ctx, result); err != nil {
		s.log.Warn("analysis persist failed", append(logger.LogWithTrace(ctx), "symbol", result.Symbol, "err", err)...)
	} else if s.metrics != nil {
		s.metrics.SQLiteCommitDur.Observe(time.Since(start).Seconds())
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheAnalysis(ctx, result); err != nil {
		s.log.Warn("analysis cache write failed", append(logger.LogWithTrace(ctx), "symbol", result.Symbol, "err", err)...)
	}
	s.cache.PublishSignals(ctx, result.Symbol, result.Signals)
	if s.metrics != nil {
		s.metrics.SignalsPushed.Add(float64(len(result.Signals)))
	}
}

func (s *Service) alert(ctx context.Context, result *model.TechnicalAnalysisResult) {
	if s.notifier == nil {
		return
	}
	for _, sig := range result.Signals {
		if sig.Signal == model.SignalHold || sig.Strength < s.MinAlertStrength {
			continue
		}
		if err := s.notifier.Send(ctx, notification.SignalAlert(result.Symbol, sig)); err != nil {
			if s.metrics != nil {
				s.metrics.AlertsFailed.WithLabelValues("notifier").Inc()
			}
			s.log.Warn("alert delivery failed",
				append(logger.LogWithTrace(ctx), "symbol", result.Symbol, "indicator", sig.Indicator, "err", err)...)
			continue
		}
		if s.metrics != nil {
			s.metrics.AlertsSent.WithLabelValues("notifier").Inc()
		}
	}
}
