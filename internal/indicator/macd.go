package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MinBars returns the minimum series length for a MACD calculation: the MACD
// line needs SlowPeriod bars and the signal line needs SignalPeriod MACD
// points on top.
func (c *MACDConfig) MinBars() int { return c.SlowPeriod + c.SignalPeriod - 1 }

// MACDAnalysis bundles the MACD result array with its derived signals.
type MACDAnalysis struct {
	Results    []model.MACDResult      `json:"results"`
	Signals    []model.TechnicalSignal `json:"signals"`
	Divergence Divergence              `json:"-"`
}

// AnalyzeMACD computes MACD line, signal line, and histogram, classifies
// line/signal crossovers, and derives crossover, histogram-momentum,
// zero-line, and divergence signals. The series must be validated and sorted.
func AnalyzeMACD(prices []model.PriceData, cfg Config) (*MACDAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().MACD
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 || c.SignalPeriod <= 0 {
		return nil, fmt.Errorf("macd: %w: periods must be positive", series.ErrInvalidPeriod)
	}
	if c.FastPeriod >= c.SlowPeriod {
		return nil, fmt.Errorf("macd: %w: fast period %d must be less than slow period %d",
			series.ErrInvalidPeriod, c.FastPeriod, c.SlowPeriod)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("macd: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	closes := model.Closes(prices)
	fast, err := series.EMA(closes, c.FastPeriod)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	slow, err := series.EMA(closes, c.SlowPeriod)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	// Align by trimming the fast EMA's head to the slow EMA's warm-up.
	offset := c.SlowPeriod - c.FastPeriod
	macdLine := make([]float64, len(slow))
	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signalLine, err := series.EMA(macdLine, c.SignalPeriod)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	// Results are aligned to the signal line's warm-up: macdLine index
	// i+sigOffset pairs with signalLine index i, landing on price bar
	// slowPeriod-1 + signalPeriod-1 + i.
	sigOffset := c.SignalPeriod - 1
	barOffset := c.SlowPeriod + c.SignalPeriod - 2

	macdAligned := macdLine[sigOffset:]
	crossovers, err := series.Crossovers(macdAligned, signalLine)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	results := make([]model.MACDResult, len(signalLine))
	for i := range signalLine {
		results[i] = model.MACDResult{
			Date:      prices[barOffset+i].Date,
			MACD:      macdAligned[i],
			Signal:    signalLine[i],
			Histogram: macdAligned[i] - signalLine[i],
			Crossover: crossovers[i],
		}
	}

	a := &MACDAnalysis{Results: results}
	a.Signals = generateMACDSignals(prices, a, c, barOffset)
	return a, nil
}

// macdCrossStrength blends a 0.6 base with bonuses for the MACD line's
// distance from zero and the histogram's magnitude (both normalized by the
// close price), plus 0.1 when line sign and histogram sign both agree with
// the crossover direction. Capped at 1.
func macdCrossStrength(r model.MACDResult, close float64, bullish bool) float64 {
	strength := 0.6
	if close > 0 {
		zeroDist := abs(r.MACD) / close
		histMag := abs(r.Histogram) / close
		strength += minF(0.15, zeroDist*10)
		strength += minF(0.15, histMag*20)
	}
	if bullish && r.MACD > 0 && r.Histogram > 0 {
		strength += 0.1
	}
	if !bullish && r.MACD < 0 && r.Histogram < 0 {
		strength += 0.1
	}
	return clamp01(strength)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func generateMACDSignals(prices []model.PriceData, a *MACDAnalysis, c *MACDConfig, barOffset int) []model.TechnicalSignal {
	var signals []model.TechnicalSignal
	results := a.Results

	for i, r := range results {
		close := prices[barOffset+i].Close

		switch r.Crossover {
		case model.CrossBullish:
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "MACD",
				Signal:      model.SignalBuy,
				Strength:    macdCrossStrength(r, close, true),
				Value:       r.MACD,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("MACD bullish crossover: line %.3f crossed above signal %.3f", r.MACD, r.Signal),
			})
		case model.CrossBearish:
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "MACD",
				Signal:      model.SignalSell,
				Strength:    macdCrossStrength(r, close, false),
				Value:       r.MACD,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("MACD bearish crossover: line %.3f crossed below signal %.3f", r.MACD, r.Signal),
			})
		}

		// Histogram turning point: a local extreme while still on one side
		// of zero means momentum is swinging back toward the zero line.
		if i >= 2 {
			h0, h1, h2 := results[i-2].Histogram, results[i-1].Histogram, r.Histogram
			if h1 < 0 && h0 > h1 && h2 > h1 {
				signals = append(signals, model.TechnicalSignal{
					Indicator:   "MACD",
					Signal:      model.SignalBuy,
					Strength:    0.5,
					Value:       h2,
					Timestamp:   r.Date,
					Description: "MACD histogram bottomed below zero, momentum turning bullish",
				})
			}
			if h1 > 0 && h0 < h1 && h2 < h1 {
				signals = append(signals, model.TechnicalSignal{
					Indicator:   "MACD",
					Signal:      model.SignalSell,
					Strength:    0.5,
					Value:       h2,
					Timestamp:   r.Date,
					Description: "MACD histogram peaked above zero, momentum turning bearish",
				})
			}
		}

		// Zero-line crossings of the MACD line itself.
		if i >= 1 {
			prev := results[i-1].MACD
			if prev <= 0 && r.MACD > 0 {
				signals = append(signals, model.TechnicalSignal{
					Indicator:   "MACD",
					Signal:      model.SignalBuy,
					Strength:    0.7,
					Value:       r.MACD,
					Timestamp:   r.Date,
					Description: fmt.Sprintf("MACD line crossed above zero (%.3f)", r.MACD),
				})
			}
			if prev >= 0 && r.MACD < 0 {
				signals = append(signals, model.TechnicalSignal{
					Indicator:   "MACD",
					Signal:      model.SignalSell,
					Strength:    0.7,
					Value:       r.MACD,
					Timestamp:   r.Date,
					Description: fmt.Sprintf("MACD line crossed below zero (%.3f)", r.MACD),
				})
			}
		}
	}

	// Divergence: same extremes comparison as RSI, with the sign of zero
	// standing in for the 50 midpoint.
	if c.DivergenceLookback > 0 {
		closes := make([]float64, len(results))
		values := make([]float64, len(results))
		for i, r := range results {
			closes[i] = prices[barOffset+i].Close
			values[i] = r.MACD
		}
		div := detectDivergence(closes, values, c.DivergenceLookback, func(v float64, bullish bool) bool {
			if bullish {
				return v < 0
			}
			return v > 0
		})
		last := results[len(results)-1]
		switch div {
		case DivergenceBullish:
			a.Divergence = div
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "MACD",
				Signal:      model.SignalBuy,
				Strength:    0.7,
				Value:       last.MACD,
				Timestamp:   last.Date,
				Description: "bullish MACD divergence: price lower low, MACD higher low",
			})
		case DivergenceBearish:
			a.Divergence = div
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "MACD",
				Signal:      model.SignalSell,
				Strength:    0.7,
				Value:       last.MACD,
				Timestamp:   last.Date,
				Description: "bearish MACD divergence: price higher high, MACD lower high",
			})
		}
	}

	return signals
}
