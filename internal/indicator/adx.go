package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MinBars returns the minimum series length for ADX: one Wilder window for
// the directional movement averages plus another for smoothing DX into ADX.
func (c *ADXConfig) MinBars() int { return 2 * c.Period }

// ADXAnalysis bundles ADX/DI results with derived signals.
type ADXAnalysis struct {
	Results []model.ADXResult       `json:"results"`
	Signals []model.TechnicalSignal `json:"signals"`
}

// AnalyzeADX computes the average directional index per Wilder: +DM/-DM and
// true range smoothed over the period give +DI/-DI, DX = 100*|+DI - -DI| /
// (+DI + -DI), and ADX is the Wilder-smoothed DX. An ADX reading at or above
// the strong-trend threshold (default 25) marks a strong trend; direction
// comes from the DI comparison.
func AnalyzeADX(prices []model.PriceData, cfg Config) (*ADXAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().ADX
	if c.Period <= 0 {
		return nil, fmt.Errorf("adx: %w: period %d", series.ErrInvalidPeriod, c.Period)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("adx: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	n := len(prices)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	tr := series.TrueRange(prices)[1:]

	for i := 1; i < n; i++ {
		upMove := prices[i].High - prices[i-1].High
		downMove := prices[i-1].Low - prices[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
	}

	smTR, err := series.WilderSmooth(tr, c.Period)
	if err != nil {
		return nil, fmt.Errorf("adx: %w", err)
	}
	smPlus, err := series.WilderSmooth(plusDM, c.Period)
	if err != nil {
		return nil, fmt.Errorf("adx: %w", err)
	}
	smMinus, err := series.WilderSmooth(minusDM, c.Period)
	if err != nil {
		return nil, fmt.Errorf("adx: %w", err)
	}

	plusDI := make([]float64, len(smTR))
	minusDI := make([]float64, len(smTR))
	dx := make([]float64, len(smTR))
	for i := range smTR {
		if smTR[i] != 0 {
			plusDI[i] = 100 * smPlus[i] / smTR[i]
			minusDI[i] = 100 * smMinus[i] / smTR[i]
		}
		if sum := plusDI[i] + minusDI[i]; sum != 0 {
			dx[i] = 100 * abs(plusDI[i]-minusDI[i]) / sum
		}
	}

	adx, err := series.WilderSmooth(dx, c.Period)
	if err != nil {
		return nil, fmt.Errorf("adx: %w", err)
	}

	// adx[i] pairs with dx index i+period-1, which is bar 1+(period-1)+(i+period-1).
	barOffset := 2*c.Period - 1
	diOffset := c.Period - 1

	a := &ADXAnalysis{}
	a.Results = make([]model.ADXResult, len(adx))
	for i := range adx {
		r := model.ADXResult{
			Date:        prices[barOffset+i].Date,
			ADX:         adx[i],
			PlusDI:      plusDI[diOffset+i],
			MinusDI:     minusDI[diOffset+i],
			StrongTrend: adx[i] >= c.StrongTrend,
		}
		switch {
		case r.StrongTrend && r.PlusDI > r.MinusDI:
			r.Signal, r.Strength = model.SignalBuy, minF(1, adx[i]/50)
		case r.StrongTrend && r.MinusDI > r.PlusDI:
			r.Signal, r.Strength = model.SignalSell, minF(1, adx[i]/50)
		default:
			r.Signal, r.Strength = model.SignalHold, 0.3
		}
		a.Results[i] = r

		// Event when a strong trend establishes.
		if r.StrongTrend && (i == 0 || !a.Results[i-1].StrongTrend) && r.Signal != model.SignalHold {
			direction := "bullish"
			if r.Signal == model.SignalSell {
				direction = "bearish"
			}
			a.Signals = append(a.Signals, model.TechnicalSignal{
				Indicator:   "ADX",
				Signal:      r.Signal,
				Strength:    r.Strength,
				Value:       r.ADX,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("ADX %.1f crossed strong-trend threshold, %s (+DI %.1f / -DI %.1f)", r.ADX, direction, r.PlusDI, r.MinusDI),
			})
		}
	}
	return a, nil
}
