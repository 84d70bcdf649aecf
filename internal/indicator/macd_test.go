package indicator

import (
	"errors"
	"math"
	"testing"

	"stockpredictions/internal/model"
)

func TestAnalyzeMACD_LengthAndAlignment(t *testing.T) {
	prices := trendBars(60, 100, 0.5)
	a, err := AnalyzeMACD(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60 bars, slow 26 + signal 9 - 1 = 34 warm-up bars
	wantLen := 60 - 34 + 1
	if len(a.Results) != wantLen {
		t.Fatalf("expected %d results, got %d", wantLen, len(a.Results))
	}
	if !a.Results[0].Date.Equal(prices[33].Date) {
		t.Errorf("first result dated %v, want bar 33 (%v)", a.Results[0].Date, prices[33].Date)
	}
	if !a.Results[len(a.Results)-1].Date.Equal(prices[59].Date) {
		t.Error("last result must land on the last bar")
	}
}

func TestAnalyzeMACD_HistogramConsistency(t *testing.T) {
	prices := trendBars(60, 100, 0.5)
	a, err := AnalyzeMACD(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range a.Results {
		if math.Abs(r.Histogram-(r.MACD-r.Signal)) > 1e-9 {
			t.Errorf("result %d: histogram %.6f != macd-signal %.6f", i, r.Histogram, r.MACD-r.Signal)
		}
	}
}

func TestAnalyzeMACD_UptrendPositive(t *testing.T) {
	prices := trendBars(80, 100, 1)
	a, err := AnalyzeMACD(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := a.Results[len(a.Results)-1]
	if last.MACD <= 0 {
		t.Errorf("steady uptrend should give positive MACD, got %.4f", last.MACD)
	}
}

func TestAnalyzeMACD_CrossoverOnReversal(t *testing.T) {
	// decline then sharp recovery forces a bullish line/signal crossover
	closes := make([]float64, 0, 80)
	for i := 0; i < 40; i++ {
		closes = append(closes, 200-float64(i))
	}
	for i := 0; i < 40; i++ {
		closes = append(closes, 160+float64(i)*2)
	}
	a, err := AnalyzeMACD(bars(closes...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sawBullish := false
	for _, r := range a.Results {
		if r.Crossover == model.CrossBullish {
			sawBullish = true
		}
	}
	if !sawBullish {
		t.Error("expected a bullish crossover after the reversal")
	}
	if countSignals(a.Signals, model.SignalBuy) == 0 {
		t.Error("expected buy signals from the bullish crossover")
	}
}

func TestAnalyzeMACD_ConfigValidation(t *testing.T) {
	prices := trendBars(60, 100, 1)

	_, err := AnalyzeMACD(prices, Config{MACD: &MACDConfig{FastPeriod: 26, SlowPeriod: 12, SignalPeriod: 9}})
	if err == nil {
		t.Error("fast >= slow must be rejected")
	}

	_, err = AnalyzeMACD(trendBars(20, 100, 1), Config{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("20 bars: expected ErrInsufficientData, got %v", err)
	}
}

func TestMACDCrossStrength(t *testing.T) {
	r := model.MACDResult{MACD: 0, Signal: 0, Histogram: 0}
	base := macdCrossStrength(r, 100, true)
	assertClose(t, base, 0.6, 1e-9, "zero-magnitude cross strength")

	strong := model.MACDResult{MACD: 5, Signal: 3, Histogram: 2}
	s := macdCrossStrength(strong, 100, true)
	if s <= base {
		t.Error("magnitude and agreement must raise strength")
	}
	assertInRange(t, s, 0, 1, "cross strength")
}
