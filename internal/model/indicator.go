package model

import "time"

// Per-indicator result types. Each result array produced from a series is
// shorter than the input by the indicator's warm-up period; every entry is
// tagged with the source date it was computed for.

// RSIResult is one Wilder-smoothed RSI reading.
type RSIResult struct {
	Date       time.Time  `json:"date"`
	Value      float64    `json:"value"` // 0..100
	Overbought bool       `json:"overbought"`
	Oversold   bool       `json:"oversold"`
	Signal     SignalType `json:"signal"`
	Strength   float64    `json:"strength"`
}

// MACDResult is one MACD reading: line, signal line, histogram, and the
// crossover state of the line vs the signal line at this bar.
type MACDResult struct {
	Date      time.Time `json:"date"`
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
	Crossover Crossover `json:"crossover"`
}

// BollingerBandsResult is one Bollinger Bands reading with derived metrics.
type BollingerBandsResult struct {
	Date      time.Time `json:"date"`
	Upper     float64   `json:"upper"`
	Middle    float64   `json:"middle"`
	Lower     float64   `json:"lower"`
	PercentB  float64   `json:"percent_b"` // (close-lower)/(upper-lower)
	Bandwidth float64   `json:"bandwidth"` // (upper-lower)/middle
	Squeeze   bool      `json:"squeeze"`   // bandwidth < 0.1
}

// MovingAverageResult is one SMA or EMA reading for a configured period.
type MovingAverageResult struct {
	Date     time.Time  `json:"date"`
	Kind     string     `json:"kind"` // "SMA" or "EMA"
	Period   int        `json:"period"`
	Value    float64    `json:"value"`
	Price    float64    `json:"price"` // close at this bar
	Signal   SignalType `json:"signal"`
	Strength float64    `json:"strength"`
}

// StochasticResult is one %K/%D stochastic oscillator reading.
type StochasticResult struct {
	Date     time.Time  `json:"date"`
	K        float64    `json:"k"`
	D        float64    `json:"d"`
	Signal   SignalType `json:"signal"`
	Strength float64    `json:"strength"`
}

// WilliamsRResult is one Williams %R reading (-100..0).
type WilliamsRResult struct {
	Date     time.Time  `json:"date"`
	Value    float64    `json:"value"`
	Signal   SignalType `json:"signal"`
	Strength float64    `json:"strength"`
}

// ADXResult is one ADX reading with directional indexes.
type ADXResult struct {
	Date        time.Time  `json:"date"`
	ADX         float64    `json:"adx"`
	PlusDI      float64    `json:"plus_di"`
	MinusDI     float64    `json:"minus_di"`
	StrongTrend bool       `json:"strong_trend"` // ADX above threshold
	Signal      SignalType `json:"signal"`
	Strength    float64    `json:"strength"`
}

// OBVResult is one on-balance-volume reading (cumulative, path-dependent).
type OBVResult struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Trend Sentiment `json:"trend"` // short-term slope classification
}

// VolumePriceTrendResult is one volume-price-trend reading.
type VolumePriceTrendResult struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Trend Sentiment `json:"trend"`
}

// AccumulationDistributionResult is one accumulation/distribution reading.
type AccumulationDistributionResult struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Trend Sentiment `json:"trend"`
}
