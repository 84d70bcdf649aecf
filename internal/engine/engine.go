// Package engine orchestrates all indicator families over one price series
// and aggregates their output into a single TechnicalAnalysisResult.
//
// The engine is stateless across calls: one Analyze invocation validates and
// sorts the input, runs every family the series is long enough for, and
// derives the summary. Running analyses for many symbols concurrently is the
// caller's concern; the engine imposes no ordering between calls.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"stockpredictions/internal/indicator"
	"stockpredictions/internal/logger"
	"stockpredictions/internal/metrics"
	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// Engine runs the full indicator suite for one symbol at a time.
type Engine struct {
	cfg     indicator.Config
	log     *slog.Logger
	metrics *metrics.Metrics

	// now is the clock for the result timestamp; injectable so results are
	// fully deterministic under test.
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches Prometheus metrics to the engine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the result-timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine. The config is merged over defaults once, here.
func New(cfg indicator.Config, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg.WithDefaults(),
		log: log,
		now: time.Now,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// family binds a name to its minimum window and its runner. Runners append
// results and signals directly onto the result under construction.
type family struct {
	name    string
	minBars func(cfg indicator.Config) int
	run     func(prices []model.PriceData, cfg indicator.Config, out *model.TechnicalAnalysisResult) error
}

func families() []family {
	return []family{
		{
			name:    "rsi",
			minBars: func(c indicator.Config) int { return c.RSI.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeRSI(p, c)
				if err != nil {
					return err
				}
				out.Indicators.RSI = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "macd",
			minBars: func(c indicator.Config) int { return c.MACD.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeMACD(p, c)
				if err != nil {
					return err
				}
				out.Indicators.MACD = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "bollinger_bands",
			minBars: func(c indicator.Config) int { return c.BollingerBands.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeBollingerBands(p, c)
				if err != nil {
					return err
				}
				out.Indicators.BollingerBands = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "moving_averages",
			minBars: func(c indicator.Config) int { return c.MovingAverage.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeMovingAverages(p, c)
				if err != nil {
					return err
				}
				out.Indicators.MovingAverages = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "stochastic",
			minBars: func(c indicator.Config) int { return c.Stochastic.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeStochastic(p, c)
				if err != nil {
					return err
				}
				out.Indicators.Stochastic = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "williams_r",
			minBars: func(c indicator.Config) int { return c.WilliamsR.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeWilliamsR(p, c)
				if err != nil {
					return err
				}
				out.Indicators.WilliamsR = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "adx",
			minBars: func(c indicator.Config) int { return c.ADX.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeADX(p, c)
				if err != nil {
					return err
				}
				out.Indicators.ADX = a.Results
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
		{
			name:    "volume",
			minBars: func(c indicator.Config) int { return c.Volume.MinBars() },
			run: func(p []model.PriceData, c indicator.Config, out *model.TechnicalAnalysisResult) error {
				a, err := indicator.AnalyzeVolume(p, c)
				if err != nil {
					return err
				}
				out.Indicators.OBV = a.OBV
				out.Indicators.VolumePriceTrend = a.VolumePriceTrend
				out.Indicators.AccumulationDistribution = a.AccumulationDistribution
				out.Signals = append(out.Signals, a.Signals...)
				return nil
			},
		},
	}
}

// Analyze validates and sorts the series, runs every indicator family the
// series is long enough for, and derives the summary.
//
// Validation failure aborts the whole call. After that point nothing does:
// a family too short for the series is recorded as skipped, and a family
// returning an error is recorded as failed; both leave the partial result
// intact so callers can tell the two apart.
func (e *Engine) Analyze(prices []model.PriceData, symbol string) (*model.TechnicalAnalysisResult, error) {
	start := time.Now()
	if err := series.Validate(prices); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	sorted := series.Sort(prices)

	result := &model.TechnicalAnalysisResult{
		Symbol:    symbol,
		Timestamp: e.now().UTC(),
	}

	traceID := logger.GenerateTraceID(symbol, result.Timestamp)
	for _, fam := range families() {
		if need := fam.minBars(e.cfg); len(sorted) < need {
			result.Families = append(result.Families, model.FamilyStatus{
				Family: fam.name,
				Status: model.FamilySkipped,
				Reason: fmt.Sprintf("need %d bars, have %d", need, len(sorted)),
			})
			continue
		}
		if err := fam.run(sorted, e.cfg, result); err != nil {
			e.log.Warn("indicator family failed",
				slog.String("symbol", symbol),
				slog.String("family", fam.name),
				slog.String("trace_id", traceID),
				slog.String("error", err.Error()),
			)
			if e.metrics != nil {
				e.metrics.FamilyFailures.WithLabelValues(fam.name).Inc()
			}
			result.Families = append(result.Families, model.FamilyStatus{
				Family: fam.name,
				Status: model.FamilyFailed,
				Reason: err.Error(),
			})
			continue
		}
		result.Families = append(result.Families, model.FamilyStatus{
			Family: fam.name,
			Status: model.FamilyOK,
		})
	}

	result.Summary = summarize(sorted, result.Signals)

	if e.metrics != nil {
		e.metrics.AnalysesTotal.Inc()
		e.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		for _, s := range result.Signals {
			e.metrics.SignalsTotal.WithLabelValues(s.Indicator, string(s.Signal)).Inc()
		}
	}
	return result, nil
}
