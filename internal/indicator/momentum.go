package indicator

import (
	"stockpredictions/internal/model"
	"stockpredictions/internal/series"
)

// MomentumAnalysis bundles the oscillator family: stochastic, Williams %R,
// and ADX over one series.
type MomentumAnalysis struct {
	Stochastic []model.StochasticResult `json:"stochastic"`
	WilliamsR  []model.WilliamsRResult  `json:"williams_r"`
	ADX        []model.ADXResult        `json:"adx"`
	Signals    []model.TechnicalSignal  `json:"signals"`
}

// AnalyzeMomentum runs the stochastic, Williams %R, and ADX calculators over
// one series and merges their signals. The series must be long enough for
// every member; callers that want per-member skipping use the engine.
func AnalyzeMomentum(prices []model.PriceData, cfg Config) (*MomentumAnalysis, error) {
	if err := series.Validate(prices); err != nil {
		return nil, err
	}

	stoch, err := AnalyzeStochastic(prices, cfg)
	if err != nil {
		return nil, err
	}
	williams, err := AnalyzeWilliamsR(prices, cfg)
	if err != nil {
		return nil, err
	}
	adx, err := AnalyzeADX(prices, cfg)
	if err != nil {
		return nil, err
	}

	a := &MomentumAnalysis{
		Stochastic: stoch.Results,
		WilliamsR:  williams.Results,
		ADX:        adx.Results,
	}
	a.Signals = append(a.Signals, stoch.Signals...)
	a.Signals = append(a.Signals, williams.Signals...)
	a.Signals = append(a.Signals, adx.Signals...)
	return a, nil
}
