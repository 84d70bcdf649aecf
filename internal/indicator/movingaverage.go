package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// Price-vs-average deviation thresholds for per-point signals. EMA reacts
// faster, so its band is tighter.
const (
	smaDeviationThreshold = 0.02
	emaDeviationThreshold = 0.015
)

// MinBars returns the minimum series length for the moving-average family:
// the shortest configured period must fit.
func (c *MovingAverageConfig) MinBars() int {
	min := 0
	for _, p := range c.Periods {
		if min == 0 || p < min {
			min = p
		}
	}
	if min == 0 {
		min = 1
	}
	return min
}

// MovingAverageAnalysis bundles per-period SMA/EMA result arrays with the
// derived deviation and crossover signals.
type MovingAverageAnalysis struct {
	Results []model.MovingAverageResult `json:"results"`
	Signals []model.TechnicalSignal     `json:"signals"`
}

// maSeries is one computed average series with its bar offset into the input.
type maSeries struct {
	kind   string
	period int
	values []float64
	offset int // values[i] belongs to prices[offset+i]
}

// AnalyzeMovingAverages computes SMA (and EMA when enabled) for every
// configured period that fits the series, derives per-point deviation
// signals, and emits crossover signals for every fast/slow pair. Periods
// longer than the series are skipped rather than failing the family.
func AnalyzeMovingAverages(prices []model.PriceData, cfg Config) (*MovingAverageAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().MovingAverage
	if len(c.Periods) == 0 {
		return nil, fmt.Errorf("moving averages: %w: no periods configured", series.ErrInvalidPeriod)
	}
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("moving averages: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	closes := model.Closes(prices)
	var computed []maSeries
	for _, period := range c.Periods {
		if period <= 0 {
			return nil, fmt.Errorf("moving averages: %w: period %d", series.ErrInvalidPeriod, period)
		}
		if period > len(closes) {
			continue
		}
		sma, err := series.SMA(closes, period)
		if err != nil {
			return nil, fmt.Errorf("moving averages: %w", err)
		}
		computed = append(computed, maSeries{kind: "SMA", period: period, values: sma, offset: period - 1})
		if c.IncludeEMA {
			ema, err := series.EMA(closes, period)
			if err != nil {
				return nil, fmt.Errorf("moving averages: %w", err)
			}
			computed = append(computed, maSeries{kind: "EMA", period: period, values: ema, offset: period - 1})
		}
	}

	a := &MovingAverageAnalysis{}
	for _, ma := range computed {
		for i, v := range ma.values {
			bar := prices[ma.offset+i]
			sig, strength := maPointSignal(bar.Close, v, ma.kind)
			a.Results = append(a.Results, model.MovingAverageResult{
				Date:     bar.Date,
				Kind:     ma.kind,
				Period:   ma.period,
				Value:    v,
				Price:    bar.Close,
				Signal:   sig,
				Strength: strength,
			})
		}
	}

	a.Signals = generateMASignals(prices, computed)
	return a, nil
}

// maPointSignal derives the per-point signal from the percentage deviation
// of price from the average; strength scales with deviation magnitude up
// to 0.8.
func maPointSignal(price, avg float64, kind string) (model.SignalType, float64) {
	if avg == 0 {
		return model.SignalHold, 0.3
	}
	threshold := smaDeviationThreshold
	if kind == "EMA" {
		threshold = emaDeviationThreshold
	}
	dev := (price - avg) / avg
	switch {
	case dev > threshold:
		return model.SignalBuy, minF(0.8, 0.3+abs(dev)*10)
	case dev < -threshold:
		return model.SignalSell, minF(0.8, 0.3+abs(dev)*10)
	default:
		return model.SignalHold, 0.3
	}
}

// generateMASignals emits crossover signals between every fast/slow pair of
// same-kind averages. Strength starts at 0.7, gains up to 0.2 for wider
// separation, and 0.1 when both averages' own point signals agree with the
// crossover direction.
func generateMASignals(prices []model.PriceData, computed []maSeries) []model.TechnicalSignal {
	var signals []model.TechnicalSignal

	for i := 0; i < len(computed); i++ {
		for j := i + 1; j < len(computed); j++ {
			fast, slow := computed[i], computed[j]
			if fast.kind != slow.kind || fast.period == slow.period {
				continue
			}
			if fast.period > slow.period {
				fast, slow = slow, fast
			}

			// Align the fast series to the slow one's warm-up.
			trim := slow.offset - fast.offset
			fastAligned := fast.values[trim:]
			crossings, err := series.Crossovers(fastAligned, slow.values)
			if err != nil {
				continue
			}

			name := fmt.Sprintf("MA Crossover (%s %d/%d)", fast.kind, fast.period, slow.period)
			for k, cross := range crossings {
				if cross == model.CrossNone {
					continue
				}
				bar := prices[slow.offset+k]
				fv, sv := fastAligned[k], slow.values[k]

				strength := 0.7
				if sv != 0 {
					strength += minF(0.2, abs(fv-sv)/sv*20)
				}
				fastSig, _ := maPointSignal(bar.Close, fv, fast.kind)
				slowSig, _ := maPointSignal(bar.Close, sv, slow.kind)
				direction := model.SignalBuy
				desc := fmt.Sprintf("%s %d crossed above %s %d (golden cross)", fast.kind, fast.period, slow.kind, slow.period)
				if cross == model.CrossBearish {
					direction = model.SignalSell
					desc = fmt.Sprintf("%s %d crossed below %s %d (death cross)", fast.kind, fast.period, slow.kind, slow.period)
				}
				if fastSig == direction && slowSig == direction {
					strength += 0.1
				}

				signals = append(signals, model.TechnicalSignal{
					Indicator:   name,
					Signal:      direction,
					Strength:    clamp01(strength),
					Value:       fv,
					Timestamp:   bar.Date,
					Description: desc,
				})
			}
		}
	}
	return signals
}
