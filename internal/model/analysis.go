package model

import (
	"encoding/json"
	"time"
)

// IndicatorSet holds every computed result array for one analysis run.
// A nil slice means the family was not run (see FamilyStatus).
type IndicatorSet struct {
	RSI                      []RSIResult                      `json:"rsi,omitempty"`
	MACD                     []MACDResult                     `json:"macd,omitempty"`
	BollingerBands           []BollingerBandsResult           `json:"bollinger_bands,omitempty"`
	MovingAverages           []MovingAverageResult            `json:"moving_averages,omitempty"`
	Stochastic               []StochasticResult               `json:"stochastic,omitempty"`
	WilliamsR                []WilliamsRResult                `json:"williams_r,omitempty"`
	ADX                      []ADXResult                      `json:"adx,omitempty"`
	OBV                      []OBVResult                      `json:"obv,omitempty"`
	VolumePriceTrend         []VolumePriceTrendResult         `json:"volume_price_trend,omitempty"`
	AccumulationDistribution []AccumulationDistributionResult `json:"accumulation_distribution,omitempty"`
}

// FamilyRunStatus describes the outcome of one indicator family in a run.
type FamilyRunStatus string

const (
	FamilyOK      FamilyRunStatus = "ok"
	FamilySkipped FamilyRunStatus = "skipped" // insufficient data, expected
	FamilyFailed  FamilyRunStatus = "failed"  // computation fault
)

// FamilyStatus records whether an indicator family ran, was skipped for
// insufficient data, or failed. Lets callers tell short data apart from a
// computation fault without losing the partial result.
type FamilyStatus struct {
	Family string          `json:"family"`
	Status FamilyRunStatus `json:"status"`
	Reason string          `json:"reason,omitempty"`
}

// Summary is the derived aggregate view of one analysis run.
type Summary struct {
	Overall        Sentiment       `json:"overall"`
	Strength       float64         `json:"strength"`   // 0..1
	Confidence     float64         `json:"confidence"` // 0.1..0.9
	TrendDirection TrendDirection  `json:"trend_direction"`
	Momentum       MomentumState   `json:"momentum"`
	Volatility     VolatilityLevel `json:"volatility"`
}

// TechnicalAnalysisResult is the aggregate output of one Analyze call for a
// single symbol. Immutable after construction; persistence belongs to the
// calling layers.
type TechnicalAnalysisResult struct {
	Symbol     string            `json:"symbol"`
	Timestamp  time.Time         `json:"timestamp"` // analysis run time
	Signals    []TechnicalSignal `json:"signals"`
	Indicators IndicatorSet      `json:"indicators"`
	Summary    Summary           `json:"summary"`
	Families   []FamilyStatus    `json:"families"`
}

// JSON returns the JSON-encoded result.
func (r *TechnicalAnalysisResult) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

// AnalysisCacheKey returns the Redis key caching a symbol's latest
// analysis: "analysis:{symbol}".
func AnalysisCacheKey(symbol string) string {
	return "analysis:" + symbol
}
