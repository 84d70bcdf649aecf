// Package insight trims a full analysis result into a compact view small
// enough to embed in API responses or pass to downstream consumers that do
// not need the full indicator arrays.
package insight

import (
	"stockpredictions/internal/model"
)

// Options controls how aggressively Compact trims.
type Options struct {
	MaxSignals int // leading signals kept, in series order (default 20)
	TailPoints int // trailing points kept per indicator array (default 5)
}

func (o Options) withDefaults() Options {
	if o.MaxSignals <= 0 {
		o.MaxSignals = 20
	}
	if o.TailPoints <= 0 {
		o.TailPoints = 5
	}
	return o
}

// Compact returns a trimmed copy of the result: the summary and family
// statuses intact, the first MaxSignals signals, and only the trailing
// points of each indicator array. The input is not modified.
func Compact(result *model.TechnicalAnalysisResult, opts Options) *model.TechnicalAnalysisResult {
	if result == nil {
		return nil
	}
	opts = opts.withDefaults()

	out := &model.TechnicalAnalysisResult{
		Symbol:    result.Symbol,
		Timestamp: result.Timestamp,
		Summary:   result.Summary,
		Families:  append([]model.FamilyStatus(nil), result.Families...),
		Signals:   leadingSignals(result.Signals, opts.MaxSignals),
		Indicators: model.IndicatorSet{
			RSI:                      tail(result.Indicators.RSI, opts.TailPoints),
			MACD:                     tail(result.Indicators.MACD, opts.TailPoints),
			BollingerBands:           tail(result.Indicators.BollingerBands, opts.TailPoints),
			MovingAverages:           latestMovingAverages(result.Indicators.MovingAverages),
			Stochastic:               tail(result.Indicators.Stochastic, opts.TailPoints),
			WilliamsR:                tail(result.Indicators.WilliamsR, opts.TailPoints),
			ADX:                      tail(result.Indicators.ADX, opts.TailPoints),
			OBV:                      tail(result.Indicators.OBV, opts.TailPoints),
			VolumePriceTrend:         tail(result.Indicators.VolumePriceTrend, opts.TailPoints),
			AccumulationDistribution: tail(result.Indicators.AccumulationDistribution, opts.TailPoints),
		},
	}
	return out
}

// leadingSignals keeps the first n signals in series order. Signals are
// emitted chronologically per family, so the head of the slice is the
// stable, reproducible slice of the run.
func leadingSignals(signals []model.TechnicalSignal, n int) []model.TechnicalSignal {
	if len(signals) <= n {
		return append([]model.TechnicalSignal(nil), signals...)
	}
	return append([]model.TechnicalSignal(nil), signals[:n]...)
}

// latestMovingAverages keeps the most recent point per (kind, period) pair,
// in first-seen order.
func latestMovingAverages(results []model.MovingAverageResult) []model.MovingAverageResult {
	if results == nil {
		return nil
	}

	type key struct {
		kind   string
		period int
	}
	latest := map[key]model.MovingAverageResult{}
	var order []key
	for _, r := range results {
		k := key{r.Kind, r.Period}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = r
	}

	out := make([]model.MovingAverageResult, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

func tail[T any](s []T, n int) []T {
	if s == nil {
		return nil
	}
	if len(s) <= n {
		return append([]T(nil), s...)
	}
	return append([]T(nil), s[len(s)-n:]...)
}
