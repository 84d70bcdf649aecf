package indicator

import (
	"fmt"

	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MinBars returns the minimum series length for the volume family: at least
// one day-over-day delta.
func (c *VolumeConfig) MinBars() int { return 2 }

// VolumeAnalysis bundles the cumulative volume indicators: on-balance
// volume, volume-price-trend, and accumulation/distribution. Each value
// depends on the entire preceding history, not a fixed window.
type VolumeAnalysis struct {
	OBV                      []model.OBVResult                      `json:"obv"`
	VolumePriceTrend         []model.VolumePriceTrendResult         `json:"volume_price_trend"`
	AccumulationDistribution []model.AccumulationDistributionResult `json:"accumulation_distribution"`
	Signals                  []model.TechnicalSignal                `json:"signals"`
}

// AnalyzeVolume computes OBV, VPT, and A/D with per-point short-term trend
// classifications, and derives OBV and A/D divergence signals against price
// plus a latest-trend signal per indicator.
func AnalyzeVolume(prices []model.PriceData, cfg Config) (*VolumeAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}
	c := cfg.WithDefaults().Volume
	if len(prices) < c.MinBars() {
		return nil, fmt.Errorf("volume: %w: need %d bars, have %d", ErrInsufficientData, c.MinBars(), len(prices))
	}

	closes := model.Closes(prices)
	obv := obvSeries(prices)
	vpt := vptSeries(prices)
	ad := adSeries(prices)

	a := &VolumeAnalysis{
		OBV:                      make([]model.OBVResult, len(prices)),
		VolumePriceTrend:         make([]model.VolumePriceTrendResult, len(prices)),
		AccumulationDistribution: make([]model.AccumulationDistributionResult, len(prices)),
	}
	for i := range prices {
		date := prices[i].Date
		a.OBV[i] = model.OBVResult{Date: date, Value: obv[i], Trend: slopeTrend(obv, i, c.TrendWindow)}
		a.VolumePriceTrend[i] = model.VolumePriceTrendResult{Date: date, Value: vpt[i], Trend: slopeTrend(vpt, i, c.TrendWindow)}
		a.AccumulationDistribution[i] = model.AccumulationDistributionResult{Date: date, Value: ad[i], Trend: slopeTrend(ad, i, c.TrendWindow)}
	}

	a.Signals = generateVolumeSignals(closes, a, c)
	return a, nil
}

// obvSeries accumulates +volume on up days and -volume on down days.
func obvSeries(prices []model.PriceData) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		switch {
		case prices[i].Close > prices[i-1].Close:
			out[i] = out[i-1] + prices[i].Volume
		case prices[i].Close < prices[i-1].Close:
			out[i] = out[i-1] - prices[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// vptSeries accumulates volume weighted by the fractional price change.
func vptSeries(prices []model.PriceData) []float64 {
	out := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		prevClose := prices[i-1].Close
		change := 0.0
		if prevClose != 0 {
			change = (prices[i].Close - prevClose) / prevClose
		}
		out[i] = out[i-1] + prices[i].Volume*change
	}
	return out
}

// adSeries accumulates money-flow volume: the close's position within the
// bar's range scaled by volume. Flat bars (high == low) contribute zero.
func adSeries(prices []model.PriceData) []float64 {
	out := make([]float64, len(prices))
	for i, bar := range prices {
		mfm := 0.0
		if bar.High != bar.Low {
			mfm = ((bar.Close - bar.Low) - (bar.High - bar.Close)) / (bar.High - bar.Low)
		}
		flow := mfm * bar.Volume
		if i == 0 {
			out[i] = flow
		} else {
			out[i] = out[i-1] + flow
		}
	}
	return out
}

// slopeTrend classifies the short-term slope of a cumulative series at index
// i by comparing against the value `window` bars back.
func slopeTrend(values []float64, i, window int) model.Sentiment {
	if window <= 0 || i < window {
		return model.SentimentNeutral
	}
	switch {
	case values[i] > values[i-window]:
		return model.SentimentBullish
	case values[i] < values[i-window]:
		return model.SentimentBearish
	default:
		return model.SentimentNeutral
	}
}

func trendSignalType(t model.Sentiment) (model.SignalType, float64) {
	switch t {
	case model.SentimentBullish:
		return model.SignalBuy, 0.5
	case model.SentimentBearish:
		return model.SignalSell, 0.5
	default:
		return model.SignalHold, 0.3
	}
}

func generateVolumeSignals(closes []float64, a *VolumeAnalysis, c *VolumeConfig) []model.TechnicalSignal {
	var signals []model.TechnicalSignal

	// Divergence against price for the two indicators that support it.
	divSeries := []struct {
		name   string
		values func(i int) float64
	}{
		{"OBV", func(i int) float64 { return a.OBV[i].Value }},
		{"A/D", func(i int) float64 { return a.AccumulationDistribution[i].Value }},
	}
	if c.DivergenceLookback > 0 {
		for _, ds := range divSeries {
			values := make([]float64, len(closes))
			for i := range closes {
				values[i] = ds.values(i)
			}
			last := len(closes) - 1
			switch detectDivergence(closes, values, c.DivergenceLookback, nil) {
			case DivergenceBullish:
				signals = append(signals, model.TechnicalSignal{
					Indicator:   ds.name,
					Signal:      model.SignalBuy,
					Strength:    0.65,
					Value:       values[last],
					Timestamp:   a.OBV[last].Date,
					Description: fmt.Sprintf("bullish %s divergence: price lower low, %s higher low", ds.name, ds.name),
				})
			case DivergenceBearish:
				signals = append(signals, model.TechnicalSignal{
					Indicator:   ds.name,
					Signal:      model.SignalSell,
					Strength:    0.65,
					Value:       values[last],
					Timestamp:   a.OBV[last].Date,
					Description: fmt.Sprintf("bearish %s divergence: price higher high, %s lower high", ds.name, ds.name),
				})
			}
		}
	}

	// Latest short-term trend per indicator.
	last := len(closes) - 1
	for _, entry := range []struct {
		name  string
		value float64
		trend model.Sentiment
	}{
		{"OBV", a.OBV[last].Value, a.OBV[last].Trend},
		{"VPT", a.VolumePriceTrend[last].Value, a.VolumePriceTrend[last].Trend},
		{"A/D", a.AccumulationDistribution[last].Value, a.AccumulationDistribution[last].Trend},
	} {
		sig, strength := trendSignalType(entry.trend)
		signals = append(signals, model.TechnicalSignal{
			Indicator:   entry.name,
			Signal:      sig,
			Strength:    strength,
			Value:       entry.value,
			Timestamp:   a.OBV[last].Date,
			Description: fmt.Sprintf("%s short-term trend is %s", entry.name, entry.trend),
		})
	}
	return signals
}
