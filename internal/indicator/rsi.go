package indicator

import (
	"errors"
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// ErrInsufficientData is returned when a series is shorter than an indicator
// family's minimum warm-up window.
var ErrInsufficientData = errors.New("insufficient data")

// MinBars returns the minimum series length for an RSI calculation.
func (c *RSIConfig) MinBars() int { return c.Period + 1 }

// RSIAnalysis bundles the RSI result array with its derived signals.
type RSIAnalysis struct {
	Results    []model.RSIResult       `json:"results"`
	Signals    []model.TechnicalSignal `json:"signals"`
	Divergence Divergence              `json:"-"`
}

// AnalyzeRSI computes the Wilder-smoothed RSI over the series and derives
// buy/sell/hold signals. The series must be validated and date-sorted.
//
// RS = avgGain/avgLoss (100 when avgLoss is zero); RSI = 100 - 100/(1+RS).
// The first reading lands on bar index cfg.Period; the result array has
// len(series) - cfg.Period entries.
func AnalyzeRSI(prices []model.PriceData, cfg Config) (*RSIAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().RSI
	if c.Period <= 0 {
		return nil, fmt.Errorf("rsi: %w: period %d", series.ErrInvalidPeriod, c.Period)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("rsi: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	closes := model.Closes(prices)
	values := rsiSeries(closes, c.Period)

	results := make([]model.RSIResult, len(values))
	for i, v := range values {
		bar := prices[i+c.Period]
		r := model.RSIResult{
			Date:       bar.Date,
			Value:      v,
			Overbought: v >= c.Overbought,
			Oversold:   v <= c.Oversold,
		}
		r.Signal, r.Strength = rsiSignal(v, c)
		results[i] = r
	}

	a := &RSIAnalysis{Results: results}
	a.Signals = generateRSISignals(prices, a, c)
	return a, nil
}

// rsiSeries computes the raw RSI values. values[i] belongs to closes[i+period].
func rsiSeries(closes []float64, period int) []float64 {
	gains, losses := series.GainsLosses(closes)

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	p := float64(period)
	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiFromAverages(avgGain, avgLoss))
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
		out = append(out, rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// rsiSignal derives the per-reading signal. Buy strength grows with depth
// below the oversold threshold, sell with height above overbought; hold
// strength scales with distance from the neutral midpoint 50 into 0.3..0.7.
func rsiSignal(v float64, c *RSIConfig) (model.SignalType, float64) {
	switch {
	case v <= c.Oversold:
		depth := 0.0
		if c.Oversold > 0 {
			depth = (c.Oversold - v) / c.Oversold
		}
		return model.SignalBuy, clamp01(0.6 + 0.4*depth)
	case v >= c.Overbought:
		height := 0.0
		if c.Overbought < 100 {
			height = (v - c.Overbought) / (100 - c.Overbought)
		}
		return model.SignalSell, clamp01(0.6 + 0.4*height)
	default:
		return model.SignalHold, 0.3 + 0.4*clamp01(abs(50-v)/50)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// generateRSISignals emits signal events: one when a bar enters the oversold
// or overbought zone, one for the latest reading, and a divergence override
// when the trailing window shows one.
func generateRSISignals(prices []model.PriceData, a *RSIAnalysis, c *RSIConfig) []model.TechnicalSignal {
	var signals []model.TechnicalSignal
	results := a.Results

	for i, r := range results {
		entered := i == 0 || (!results[i-1].Oversold && !results[i-1].Overbought)
		if r.Oversold && entered {
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "RSI",
				Signal:      model.SignalBuy,
				Strength:    r.Strength,
				Value:       r.Value,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("RSI %.1f entered oversold zone (<= %.0f)", r.Value, c.Oversold),
			})
		}
		if r.Overbought && entered {
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "RSI",
				Signal:      model.SignalSell,
				Strength:    r.Strength,
				Value:       r.Value,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("RSI %.1f entered overbought zone (>= %.0f)", r.Value, c.Overbought),
			})
		}
	}

	last := results[len(results)-1]
	current := model.TechnicalSignal{
		Indicator:   "RSI",
		Signal:      last.Signal,
		Strength:    last.Strength,
		Value:       last.Value,
		Timestamp:   last.Date,
		Description: fmt.Sprintf("RSI at %.1f", last.Value),
	}

	// Divergence post-pass: price and RSI disagreeing at window extremes
	// overrides the current signal and boosts its strength.
	if c.DivergenceLookback > 0 {
		closes := make([]float64, len(results))
		values := make([]float64, len(results))
		for i, r := range results {
			closes[i] = prices[i+c.Period].Close
			values[i] = r.Value
		}
		div := detectDivergence(closes, values, c.DivergenceLookback, func(v float64, bullish bool) bool {
			if bullish {
				return v < 50
			}
			return v > 50
		})
		switch div {
		case DivergenceBullish:
			a.Divergence = div
			current.Signal = model.SignalBuy
			current.Strength = clamp01(current.Strength + 0.2)
			current.Description = fmt.Sprintf("bullish RSI divergence: price lower low, RSI %.1f higher low", last.Value)
		case DivergenceBearish:
			a.Divergence = div
			current.Signal = model.SignalSell
			current.Strength = clamp01(current.Strength + 0.2)
			current.Description = fmt.Sprintf("bearish RSI divergence: price higher high, RSI %.1f lower high", last.Value)
		}
	}

	return append(signals, current)
}
