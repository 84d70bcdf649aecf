package indicator

import (
	"testing"

	"stockpredictions/internal/model"
)

func TestAnalyzeMovingAverages_SkipsLongPeriods(t *testing.T) {
	prices := trendBars(60, 100, 1)
	a, err := AnalyzeMovingAverages(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// default periods 20/50/200 with EMA: 200 does not fit 60 bars
	seen := map[string]bool{}
	for _, r := range a.Results {
		seen[r.Kind] = true
		if r.Period == 200 {
			t.Error("period 200 must be skipped on 60 bars")
		}
	}
	if !seen["SMA"] || !seen["EMA"] {
		t.Error("expected both SMA and EMA results")
	}
}

func TestAnalyzeMovingAverages_GoldenCross(t *testing.T) {
	// decline long enough to pin the fast average below the slow one, then a
	// strong recovery forces the fast average back across it
	closes := make([]float64, 0, 120)
	for i := 0; i < 60; i++ {
		closes = append(closes, 200-float64(i))
	}
	for i := 0; i < 60; i++ {
		closes = append(closes, 140+float64(i)*2)
	}
	a, err := AnalyzeMovingAverages(bars(closes...), Config{
		MovingAverage: &MovingAverageConfig{Periods: []int{20, 50}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if countSignals(a.Signals, model.SignalBuy) == 0 {
		t.Error("expected a golden-cross buy signal after the recovery")
	}
	for _, s := range a.Signals {
		assertInRange(t, s.Strength, 0.7, 1.0, "crossover strength")
	}
}

func TestMAPointSignal_DeviationThresholds(t *testing.T) {
	// within 2% of an SMA reads hold
	sig, strength := maPointSignal(101, 100, "SMA")
	if sig != model.SignalHold {
		t.Errorf("1%% above SMA: got %s, want hold", sig)
	}
	assertClose(t, strength, 0.3, 1e-9, "hold strength")

	// beyond 2% reads buy, strength grows with deviation
	sig, s1 := maPointSignal(103, 100, "SMA")
	if sig != model.SignalBuy {
		t.Errorf("3%% above SMA: got %s, want buy", sig)
	}
	_, s2 := maPointSignal(106, 100, "SMA")
	if s2 <= s1 {
		t.Error("strength must grow with deviation")
	}
	if s2 > 0.8 {
		t.Errorf("deviation strength capped at 0.8, got %.2f", s2)
	}

	// EMA band is tighter: 1.8% already signals
	sig, _ = maPointSignal(101.8, 100, "EMA")
	if sig != model.SignalBuy {
		t.Errorf("1.8%% above EMA: got %s, want buy", sig)
	}

	// below the average mirrors to sell
	sig, _ = maPointSignal(97, 100, "SMA")
	if sig != model.SignalSell {
		t.Errorf("3%% below SMA: got %s, want sell", sig)
	}
}

func TestDetectDivergence(t *testing.T) {
	// price makes a lower low on the last bar while the indicator holds a
	// higher low
	prices := []float64{10, 8, 9, 10, 7}
	values := []float64{50, 30, 40, 45, 35}
	if d := detectDivergence(prices, values, 5, nil); d != DivergenceBullish {
		t.Errorf("expected bullish divergence, got %v", d)
	}

	// mirrored for bearish
	prices = []float64{10, 12, 11, 10, 13}
	values = []float64{50, 70, 60, 55, 65}
	if d := detectDivergence(prices, values, 5, nil); d != DivergenceBearish {
		t.Errorf("expected bearish divergence, got %v", d)
	}

	// qualifier can veto
	reject := func(v float64, bullish bool) bool { return false }
	prices = []float64{10, 8, 9, 10, 7}
	values = []float64{50, 30, 40, 45, 35}
	if d := detectDivergence(prices, values, 5, reject); d != DivergenceNone {
		t.Errorf("qualifier veto: expected none, got %v", d)
	}

	// no divergence on agreement
	prices = []float64{10, 8, 9, 10, 7}
	values = []float64{50, 30, 40, 45, 20}
	if d := detectDivergence(prices, values, 5, nil); d != DivergenceNone {
		t.Errorf("price and indicator agreeing: expected none, got %v", d)
	}
}
