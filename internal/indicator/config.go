// Package indicator provides technical indicator calculations over daily
// OHLCV price series, one analysis entry point per indicator family.
//
// Each AnalyzeXxx function computes the family's result arrays and derives
// TechnicalSignal events from them. All functions are pure and single-pass;
// inputs must have passed series.Validate and be date-sorted.
package indicator

// Config carries one optional sub-config per indicator family. Nil
// sub-configs fall back to the documented defaults; the merged config is
// immutable for the duration of one analysis call.
type Config struct {
	RSI            *RSIConfig
	MACD           *MACDConfig
	BollingerBands *BollingerConfig
	MovingAverage  *MovingAverageConfig
	Stochastic     *StochasticConfig
	WilliamsR      *WilliamsRConfig
	ADX            *ADXConfig
	Volume         *VolumeConfig
}

// RSIConfig configures the RSI calculator.
type RSIConfig struct {
	Period             int
	Overbought         float64
	Oversold           float64
	DivergenceLookback int // 0 disables divergence detection
}

// MACDConfig configures the MACD calculator. FastPeriod must be strictly
// less than SlowPeriod.
type MACDConfig struct {
	FastPeriod         int
	SlowPeriod         int
	SignalPeriod       int
	DivergenceLookback int
}

// BollingerConfig configures the Bollinger Bands calculator.
type BollingerConfig struct {
	Period           int
	StdDevMultiplier float64
}

// MovingAverageConfig configures the moving-average family.
type MovingAverageConfig struct {
	Periods    []int // SMA/EMA periods, ascending
	IncludeEMA bool
}

// StochasticConfig configures the stochastic oscillator.
type StochasticConfig struct {
	KPeriod    int
	DPeriod    int
	Overbought float64
	Oversold   float64
}

// WilliamsRConfig configures Williams %R. Thresholds are on the -100..0
// scale (overbought near 0, oversold near -100).
type WilliamsRConfig struct {
	Period     int
	Overbought float64
	Oversold   float64
}

// ADXConfig configures the average directional index.
type ADXConfig struct {
	Period      int
	StrongTrend float64 // ADX level at which a trend counts as strong
}

// VolumeConfig configures the volume-indicator family.
type VolumeConfig struct {
	TrendWindow        int // bars for the short-term slope classification
	DivergenceLookback int
}

// DefaultConfig returns the documented defaults for every family.
func DefaultConfig() Config {
	return Config{
		RSI:            &RSIConfig{Period: 14, Overbought: 70, Oversold: 30, DivergenceLookback: 20},
		MACD:           &MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9, DivergenceLookback: 20},
		BollingerBands: &BollingerConfig{Period: 20, StdDevMultiplier: 2},
		MovingAverage:  &MovingAverageConfig{Periods: []int{20, 50, 200}, IncludeEMA: true},
		Stochastic:     &StochasticConfig{KPeriod: 14, DPeriod: 3, Overbought: 80, Oversold: 20},
		WilliamsR:      &WilliamsRConfig{Period: 14, Overbought: -20, Oversold: -80},
		ADX:            &ADXConfig{Period: 14, StrongTrend: 25},
		Volume:         &VolumeConfig{TrendWindow: 5, DivergenceLookback: 20},
	}
}

// WithDefaults merges the caller-supplied config over the defaults,
// sub-config by sub-config. The receiver is not mutated.
func (c Config) WithDefaults() Config {
	merged := DefaultConfig()
	if c.RSI != nil {
		merged.RSI = c.RSI
	}
	if c.MACD != nil {
		merged.MACD = c.MACD
	}
	if c.BollingerBands != nil {
		merged.BollingerBands = c.BollingerBands
	}
	if c.MovingAverage != nil {
		merged.MovingAverage = c.MovingAverage
	}
	if c.Stochastic != nil {
		merged.Stochastic = c.Stochastic
	}
	if c.WilliamsR != nil {
		merged.WilliamsR = c.WilliamsR
	}
	if c.ADX != nil {
		merged.ADX = c.ADX
	}
	if c.Volume != nil {
		merged.Volume = c.Volume
	}
	return merged
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
