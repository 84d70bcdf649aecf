package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

const (
	squeezeBandwidth   = 0.1   // bandwidth below this is a squeeze
	bandTouchTolerance = 0.001 // price within 0.1% of a band counts as a touch
	extremeLowPercentB = 0.05
	extremeHighPctB    = 0.95
	bandWalkTolerance  = 0.02 // close within 2% of a band
	bandWalkMinBars    = 3
)

// MinBars returns the minimum series length for Bollinger Bands.
func (c *BollingerConfig) MinBars() int { return c.Period }

// BandWalk classifies sustained hugging of one band. Auxiliary
// classification only, never a signal.
type BandWalk string

const (
	BandWalkNone  BandWalk = "none"
	BandWalkUpper BandWalk = "upper"
	BandWalkLower BandWalk = "lower"
)

// BollingerAnalysis bundles the band result array, derived signals, and the
// band-walking classification of the trailing bars.
type BollingerAnalysis struct {
	Results  []model.BollingerBandsResult `json:"results"`
	Signals  []model.TechnicalSignal      `json:"signals"`
	BandWalk BandWalk                     `json:"band_walk"`
}

// AnalyzeBollingerBands computes middle/upper/lower bands with %B and
// bandwidth, flags squeezes, and derives band-touch, breakout, squeeze-end,
// and extreme-%B signals. The series must be validated and date-sorted.
func AnalyzeBollingerBands(prices []model.PriceData, cfg Config) (*BollingerAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().BollingerBands
	if c.Period <= 0 {
		return nil, fmt.Errorf("bollinger: %w: period %d", series.ErrInvalidPeriod, c.Period)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("bollinger: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	closes := model.Closes(prices)
	middle, err := series.SMA(closes, c.Period)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	stddev, err := series.StdDev(closes, c.Period)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}

	offset := c.Period - 1
	results := make([]model.BollingerBandsResult, len(middle))
	for i := range middle {
		upper := middle[i] + c.StdDevMultiplier*stddev[i]
		lower := middle[i] - c.StdDevMultiplier*stddev[i]
		close := closes[offset+i]

		percentB := 0.5
		if upper != lower {
			percentB = (close - lower) / (upper - lower)
		}
		bandwidth := 0.0
		if middle[i] != 0 {
			bandwidth = (upper - lower) / middle[i]
		}

		results[i] = model.BollingerBandsResult{
			Date:      prices[offset+i].Date,
			Upper:     upper,
			Middle:    middle[i],
			Lower:     lower,
			PercentB:  percentB,
			Bandwidth: bandwidth,
			Squeeze:   bandwidth < squeezeBandwidth,
		}
	}

	a := &BollingerAnalysis{Results: results}
	a.Signals = generateBollingerSignals(prices, results, offset)
	a.BandWalk = classifyBandWalk(closes, results, offset)
	return a, nil
}

// nearBand reports whether price is within the touch tolerance of a band.
// The tolerance is relative to the band's magnitude; deep-crash windows can
// push the lower band negative.
func nearBand(price, band float64) bool {
	if band == 0 {
		return false
	}
	return abs(price-band)/abs(band) <= bandTouchTolerance
}

func generateBollingerSignals(prices []model.PriceData, results []model.BollingerBandsResult, offset int) []model.TechnicalSignal {
	var signals []model.TechnicalSignal

	for i := 1; i < len(results); i++ {
		r := results[i]
		prev := results[i-1]
		close := prices[offset+i].Close
		prevClose := prices[offset+i-1].Close

		// Band touch: price reaches a band it was farther from on the
		// prior bar. Lower touch reads as mean reversion buy, upper as sell.
		if nearBand(close, r.Lower) && !nearBand(prevClose, prev.Lower) {
			strength := 0.6
			if r.PercentB < extremeLowPercentB {
				strength += 0.2
			}
			if r.Squeeze {
				strength += 0.1
			}
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalBuy,
				Strength:    clamp01(strength),
				Value:       close,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("price %.2f touched lower band %.2f", close, r.Lower),
			})
		}
		if nearBand(close, r.Upper) && !nearBand(prevClose, prev.Upper) {
			strength := 0.6
			if r.PercentB > extremeHighPctB {
				strength += 0.2
			}
			if r.Squeeze {
				strength += 0.1
			}
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalSell,
				Strength:    clamp01(strength),
				Value:       close,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("price %.2f touched upper band %.2f", close, r.Upper),
			})
		}

		// Band breakout: price crossing fully outside a band reads as
		// momentum continuation.
		if prevClose <= prev.Upper && close > r.Upper {
			strength := 0.7 + minF(0.2, (r.PercentB-1)*2)
			if prev.Squeeze {
				strength += 0.1
			}
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalBuy,
				Strength:    clamp01(strength),
				Value:       close,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("price %.2f broke out above upper band %.2f", close, r.Upper),
			})
		}
		if prevClose >= prev.Lower && close < r.Lower {
			strength := 0.7 + minF(0.2, -r.PercentB*2)
			if prev.Squeeze {
				strength += 0.1
			}
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalSell,
				Strength:    clamp01(strength),
				Value:       close,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("price %.2f broke down below lower band %.2f", close, r.Lower),
			})
		}

		// Squeeze ending: bandwidth expanding more than 20% off a squeeze
		// flags expected volatility expansion, direction unknown.
		if prev.Squeeze && prev.Bandwidth > 0 && r.Bandwidth > prev.Bandwidth*1.2 {
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalHold,
				Strength:    0.5,
				Value:       r.Bandwidth,
				Timestamp:   r.Date,
				Description: "squeeze ending: bandwidth expanding, volatility breakout expected",
			})
		}

		// Extreme %B is its own signal regardless of touch/breakout state.
		if r.PercentB < extremeLowPercentB {
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalBuy,
				Strength:    0.7,
				Value:       r.PercentB,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("%%B %.3f below %.2f, price pressed against lower band", r.PercentB, extremeLowPercentB),
			})
		}
		if r.PercentB > extremeHighPctB {
			signals = append(signals, model.TechnicalSignal{
				Indicator:   "Bollinger Bands",
				Signal:      model.SignalSell,
				Strength:    0.7,
				Value:       r.PercentB,
				Timestamp:   r.Date,
				Description: fmt.Sprintf("%%B %.3f above %.2f, price pressed against upper band", r.PercentB, extremeHighPctB),
			})
		}
	}
	return signals
}

// classifyBandWalk reports whether the trailing bars hug one band: at least
// bandWalkMinBars consecutive closes within the walk tolerance of the same
// band.
func classifyBandWalk(closes []float64, results []model.BollingerBandsResult, offset int) BandWalk {
	if len(results) < bandWalkMinBars {
		return BandWalkNone
	}

	upper, lower := true, true
	for i := len(results) - bandWalkMinBars; i < len(results); i++ {
		r := results[i]
		close := closes[offset+i]
		if r.Upper == 0 || abs(close-r.Upper)/abs(r.Upper) > bandWalkTolerance {
			upper = false
		}
		if r.Lower == 0 || abs(close-r.Lower)/abs(r.Lower) > bandWalkTolerance {
			lower = false
		}
	}
	switch {
	case upper:
		return BandWalkUpper
	case lower:
		return BandWalkLower
	default:
		return BandWalkNone
	}
}
