package indicator

// Divergence classifies a price-vs-indicator divergence inside a lookback
// window.
type Divergence int

const (
	DivergenceNone Divergence = iota
	DivergenceBullish
	DivergenceBearish
)

// detectDivergence scans the trailing lookback window of two aligned series.
//
// Bullish: the latest price prints a lower low than the window's prior
// minimum while the indicator prints a higher low at the same two points.
// Bearish: the latest price prints a higher high while the indicator prints
// a lower high. The qualifies callback restricts which indicator readings
// may participate (e.g. both below 50 for RSI, both below zero for MACD);
// pass nil to accept any reading.
func detectDivergence(prices, values []float64, lookback int, qualifies func(v float64, bullish bool) bool) Divergence {
	n := len(prices)
	if len(values) != n || n < 3 {
		return DivergenceNone
	}
	if lookback <= 0 {
		return DivergenceNone
	}

	start := n - lookback
	if start < 0 {
		start = 0
	}
	last := n - 1
	if last-start < 2 {
		return DivergenceNone
	}

	// Prior extremes exclude the latest bar.
	minIdx, maxIdx := start, start
	for i := start; i < last; i++ {
		if prices[i] < prices[minIdx] {
			minIdx = i
		}
		if prices[i] > prices[maxIdx] {
			maxIdx = i
		}
	}

	ok := func(v float64, bullish bool) bool {
		if qualifies == nil {
			return true
		}
		return qualifies(v, bullish)
	}

	if prices[last] < prices[minIdx] && values[last] > values[minIdx] &&
		ok(values[last], true) && ok(values[minIdx], true) {
		return DivergenceBullish
	}
	if prices[last] > prices[maxIdx] && values[last] < values[maxIdx] &&
		ok(values[last], false) && ok(values[maxIdx], false) {
		return DivergenceBearish
	}
	return DivergenceNone
}
