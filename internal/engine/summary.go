package engine

import (
	"math"

	"stockpredictions/internal/model"
)

const (
	trendLookbackBars  = 20
	trendChangePct     = 0.02
	momentumWindow     = 5
	momentumChangeRel  = 0.20
	volatilityLowBand  = 0.15
	volatilityHighBand = 0.30
	tradingDaysPerYear = 252
)

// summarize derives the aggregate view: overall sentiment from the ratio of
// summed buy strength to summed buy+sell strength, confidence from signal
// count, and trend/momentum/volatility classifications from the raw series.
func summarize(prices []model.PriceData, signals []model.TechnicalSignal) model.Summary {
	s := model.Summary{
		Overall:        model.SentimentNeutral,
		TrendDirection: classifyTrend(prices),
		Momentum:       classifyMomentum(prices),
		Volatility:     classifyVolatility(prices),
	}

	var buySum, sellSum float64
	count := 0
	for _, sig := range signals {
		switch sig.Signal {
		case model.SignalBuy:
			buySum += sig.Strength
			count++
		case model.SignalSell:
			sellSum += sig.Strength
			count++
		}
	}

	if total := buySum + sellSum; total > 0 {
		ratio := buySum / total
		switch {
		case ratio > 0.6:
			s.Overall = model.SentimentBullish
		case ratio < 0.4:
			s.Overall = model.SentimentBearish
		}
		// Conviction: how far the ratio sits from an even split.
		s.Strength = math.Abs(ratio-0.5) * 2
	}

	s.Confidence = clampF(0.05*float64(count), 0.1, 0.9)
	return s
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// classifyTrend compares the mean close of the first vs second half of the
// trailing 20 bars; more than a 2% change is a trend.
func classifyTrend(prices []model.PriceData) model.TrendDirection {
	window := prices
	if len(window) > trendLookbackBars {
		window = window[len(window)-trendLookbackBars:]
	}
	if len(window) < 4 {
		return model.TrendSideways
	}

	half := len(window) / 2
	firstMean := meanClose(window[:half])
	secondMean := meanClose(window[half:])
	if firstMean == 0 {
		return model.TrendSideways
	}

	change := (secondMean - firstMean) / firstMean
	switch {
	case change > trendChangePct:
		return model.TrendUp
	case change < -trendChangePct:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

func meanClose(bars []model.PriceData) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

// classifyMomentum compares mean absolute daily return of the most recent 5
// bars against the preceding 5; a relative change beyond 20% is a momentum
// shift.
func classifyMomentum(prices []model.PriceData) model.MomentumState {
	returns := dailyReturns(prices)
	if len(returns) < 2*momentumWindow {
		return model.MomentumStable
	}

	recent := meanAbs(returns[len(returns)-momentumWindow:])
	prior := meanAbs(returns[len(returns)-2*momentumWindow : len(returns)-momentumWindow])
	if prior == 0 {
		if recent > 0 {
			return model.MomentumIncreasing
		}
		return model.MomentumStable
	}

	rel := (recent - prior) / prior
	switch {
	case rel > momentumChangeRel:
		return model.MomentumIncreasing
	case rel < -momentumChangeRel:
		return model.MomentumDecreasing
	default:
		return model.MomentumStable
	}
}

// classifyVolatility buckets the annualized (sqrt-252 scaled) standard
// deviation of daily returns.
func classifyVolatility(prices []model.PriceData) model.VolatilityLevel {
	returns := dailyReturns(prices)
	if len(returns) < 2 {
		return model.VolatilityMedium
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	annualized := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
	switch {
	case annualized < volatilityLowBand:
		return model.VolatilityLow
	case annualized > volatilityHighBand:
		return model.VolatilityHigh
	default:
		return model.VolatilityMedium
	}
}

func dailyReturns(prices []model.PriceData) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, prices[i].Return(prices[i-1]))
	}
	return out
}

func meanAbs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}
