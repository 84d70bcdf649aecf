package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MinBars returns the minimum series length for Williams %R.
func (c *WilliamsRConfig) MinBars() int { return c.Period }

// WilliamsRAnalysis bundles %R results with derived signals.
type WilliamsRAnalysis struct {
	Results []model.WilliamsRResult `json:"results"`
	Signals []model.TechnicalSignal `json:"signals"`
}

// AnalyzeWilliamsR computes Williams %R:
// %R = (highestHigh - close) / (highestHigh - lowestLow) * -100, on the
// -100..0 scale. Readings at or below the oversold threshold (default -80)
// produce buy signals, at or above overbought (default -20) sell signals,
// with strength growing with depth into the zone.
func AnalyzeWilliamsR(prices []model.PriceData, cfg Config) (*WilliamsRAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().WilliamsR
	if c.Period <= 0 {
		return nil, fmt.Errorf("williams %%r: %w: period %d", series.ErrInvalidPeriod, c.Period)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("williams %%r: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	highs := make([]float64, len(prices))
	lows := make([]float64, len(prices))
	for i, bar := range prices {
		highs[i] = bar.High
		lows[i] = bar.Low
	}
	highest, err := series.RollingMax(highs, c.Period)
	if err != nil {
		return nil, fmt.Errorf("williams %%r: %w", err)
	}
	lowest, err := series.RollingMin(lows, c.Period)
	if err != nil {
		return nil, fmt.Errorf("williams %%r: %w", err)
	}

	offset := c.Period - 1
	a := &WilliamsRAnalysis{}
	a.Results = make([]model.WilliamsRResult, len(highest))
	for i := range highest {
		close := prices[offset+i].Close
		v := -50.0
		if highest[i] != lowest[i] {
			v = (highest[i] - close) / (highest[i] - lowest[i]) * -100
		}

		r := model.WilliamsRResult{Date: prices[offset+i].Date, Value: v}
		switch {
		case v <= c.Oversold:
			// Depth below -80 toward -100 scales strength.
			depth := (c.Oversold - v) / (c.Oversold + 100)
			r.Signal, r.Strength = model.SignalBuy, clamp01(0.6+0.4*depth)
		case v >= c.Overbought:
			height := (v - c.Overbought) / -c.Overbought
			r.Signal, r.Strength = model.SignalSell, clamp01(0.6+0.4*height)
		default:
			r.Signal, r.Strength = model.SignalHold, 0.3
		}
		a.Results[i] = r

		// Emit an event when a bar enters a zone.
		entered := i == 0 ||
			(a.Results[i-1].Value > c.Oversold && a.Results[i-1].Value < c.Overbought)
		if entered && r.Signal != model.SignalHold {
			zone := "oversold"
			if r.Signal == model.SignalSell {
				zone = "overbought"
			}
			a.Signals = append(a.Signals, model.TechnicalSignal{
				Indicator:   "Williams %R",
				Signal:      r.Signal,
				Strength:    r.Strength,
				Value:       v,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("Williams %%R %.1f entered %s zone", v, zone),
			})
		}
	}
	return a, nil
}
