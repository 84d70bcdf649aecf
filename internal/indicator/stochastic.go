package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MinBars returns the minimum series length for the stochastic oscillator.
func (c *StochasticConfig) MinBars() int { return c.KPeriod + c.DPeriod - 1 }

// StochasticAnalysis bundles %K/%D results with derived signals.
type StochasticAnalysis struct {
	Results []model.StochasticResult `json:"results"`
	Signals []model.TechnicalSignal  `json:"signals"`
}

// AnalyzeStochastic computes the stochastic oscillator:
// %K = (close - lowestLow) / (highestHigh - lowestLow) * 100 over KPeriod,
// %D = SMA(%K, DPeriod). A %K/%D crossover inside the oversold (overbought)
// zone produces a buy (sell) signal at fixed strength 0.7.
func AnalyzeStochastic(prices []model.PriceData, cfg Config) (*StochasticAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().Stochastic
	if c.KPeriod <= 0 || c.DPeriod <= 0 {
		return nil, fmt.Errorf("stochastic: %w: periods must be positive", series.ErrInvalidPeriod)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("stochastic: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	highs := make([]float64, len(prices))
	lows := make([]float64, len(prices))
	for i, bar := range prices {
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	highest, err := series.RollingMax(highs, c.KPeriod)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}
	lowest, err := series.RollingMin(lows, c.KPeriod)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}

	kOffset := c.KPeriod - 1
	kValues := make([]float64, len(highest))
	for i := range highest {
		close := prices[kOffset+i].Close
		if highest[i] == lowest[i] {
			kValues[i] = 50 // flat window, neutral
		} else {
			kValues[i] = (close - lowest[i]) / (highest[i] - lowest[i]) * 100
		}
	}

	dValues, err := series.SMA(kValues, c.DPeriod)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}

	// Align %K to %D's warm-up.
	dOffset := c.DPeriod - 1
	kAligned := kValues[dOffset:]
	barOffset := kOffset + dOffset

	crossings, err := series.Crossovers(kAligned, dValues)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}

	a := &StochasticAnalysis{}
	a.Results = make([]model.StochasticResult, len(dValues))
	for i := range dValues {
		r := model.StochasticResult{
			Date:   prices[barOffset+i].Date,
			K:      kAligned[i],
			D:      dValues[i],
			Signal: model.SignalHold,
		}
		r.Strength = 0.3

		both := func(threshold float64, below bool) bool {
			if below {
				return r.K < threshold && r.D < threshold
			}
			return r.K > threshold && r.D > threshold
		}
		switch {
		case crossings[i] == model.CrossBullish && both(c.Oversold, true):
			r.Signal, r.Strength = model.SignalBuy, 0.7
			a.Signals = append(a.Signals, model.TechnicalSignal{
				Indicator:   "Stochastic",
				Signal:      model.SignalBuy,
				Strength:    0.7,
				Value:       r.K,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("%%K %.1f crossed above %%D %.1f in oversold zone", r.K, r.D),
			})
		case crossings[i] == model.CrossBearish && both(c.Overbought, false):
			r.Signal, r.Strength = model.SignalSell, 0.7
			a.Signals = append(a.Signals, model.TechnicalSignal{
				Indicator:   "Stochastic",
				Signal:      model.SignalSell,
				Strength:    0.7,
				Value:       r.K,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("%%K %.1f crossed below %%D %.1f in overbought zone", r.K, r.D),
			})
		}
		a.Results[i] = r
	}
	return a, nil
}
