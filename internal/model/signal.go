package model

import (
	"encoding/json"
	"time"
)

// SignalType represents a directional trading signal.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

// Crossover classifies one series transitioning across another.
type Crossover string

const (
	CrossNone    Crossover = "none"
	CrossBullish Crossover = "bullish"
	CrossBearish Crossover = "bearish"
)

// Sentiment is an overall directional bias (also used for volume-indicator
// trend classification).
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// TrendDirection classifies recent price direction.
type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
)

// MomentumState classifies whether price movement is accelerating.
type MomentumState string

const (
	MomentumIncreasing MomentumState = "increasing"
	MomentumDecreasing MomentumState = "decreasing"
	MomentumStable     MomentumState = "stable"
)

// VolatilityLevel buckets annualized return volatility.
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "low"
	VolatilityMedium VolatilityLevel = "medium"
	VolatilityHigh   VolatilityLevel = "high"
)

// TechnicalSignal is a normalized trading-signal event produced by one
// indicator's signal generator. Multiple signals may share a timestamp.
type TechnicalSignal struct {
	Indicator   string     `json:"indicator"`
	Signal      SignalType `json:"signal"`
	Strength    float64    `json:"strength"` // 0..1 heuristic confidence
	Value       float64    `json:"value"`    // triggering numeric reading
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
}

// JSON returns the JSON-encoded signal.
func (s *TechnicalSignal) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}

// SignalChannel returns the Redis Pub/Sub channel for a symbol's signals:
// "pub:signals:{symbol}".
func SignalChannel(symbol string) string {
	return "pub:signals:" + symbol
}
