package indicator

import (
	"errors"
	"testing"

	"stockpredictions/internal/model"
)

func TestAnalyzeRSI_Length(t *testing.T) {
	prices := trendBars(30, 100, 0.5)
	a, err := AnalyzeRSI(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Results) != 30-14 {
		t.Fatalf("expected %d results, got %d", 30-14, len(a.Results))
	}
	// first reading belongs to bar index 14
	if !a.Results[0].Date.Equal(prices[14].Date) {
		t.Errorf("first RSI dated %v, want %v", a.Results[0].Date, prices[14].Date)
	}
}

func TestAnalyzeRSI_Bounds(t *testing.T) {
	// mixed up/down closes
	prices := bars(100, 102, 101, 104, 103, 105, 104, 107, 106, 108,
		107, 109, 108, 110, 109, 111, 110, 112, 111, 113)
	a, err := AnalyzeRSI(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range a.Results {
		assertInRange(t, r.Value, 0, 100, "rsi value")
		if r.Overbought && r.Oversold {
			t.Errorf("result %d flagged both overbought and oversold", i)
		}
	}
}

func TestAnalyzeRSI_AllGainsIs100(t *testing.T) {
	prices := trendBars(20, 100, 1)
	a, err := AnalyzeRSI(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := a.Results[len(a.Results)-1]
	assertClose(t, last.Value, 100, 1e-9, "monotonic rise RSI")
	if !last.Overbought {
		t.Error("RSI 100 must flag overbought")
	}
	if last.Signal != model.SignalSell {
		t.Errorf("RSI 100 signal: got %s, want sell", last.Signal)
	}
}

func TestAnalyzeRSI_OversoldBuy(t *testing.T) {
	prices := trendBars(20, 200, -4)
	a, err := AnalyzeRSI(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := a.Results[len(a.Results)-1]
	if !last.Oversold {
		t.Fatalf("monotonic decline should be oversold, RSI=%.2f", last.Value)
	}
	if last.Signal != model.SignalBuy {
		t.Errorf("oversold signal: got %s, want buy", last.Signal)
	}
	assertInRange(t, last.Strength, 0.6, 1.0, "oversold strength")

	if countSignals(a.Signals, model.SignalBuy) == 0 {
		t.Error("expected at least one buy signal event")
	}
}

func TestAnalyzeRSI_InsufficientData(t *testing.T) {
	_, err := AnalyzeRSI(trendBars(10, 100, 1), Config{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeRSI_ZoneEntryEmittedOncePerVisit(t *testing.T) {
	// long decline into oversold, staying there
	prices := trendBars(40, 300, -5)
	a, err := AnalyzeRSI(prices, Config{RSI: &RSIConfig{Period: 14, Overbought: 70, Oversold: 30}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one zone-entry event plus the final-state signal, nothing per-bar
	if got := countSignals(a.Signals, model.SignalBuy); got != 2 {
		t.Errorf("expected 2 buy signals (entry + current), got %d", got)
	}
}

func TestRSISignal_HoldScalesWithDistance(t *testing.T) {
	c := &RSIConfig{Period: 14, Overbought: 70, Oversold: 30}

	sig, strength := rsiSignal(50, c)
	if sig != model.SignalHold {
		t.Fatalf("RSI 50: got %s, want hold", sig)
	}
	assertClose(t, strength, 0.3, 1e-9, "neutral hold strength")

	_, nearEdge := rsiSignal(65, c)
	if nearEdge <= strength {
		t.Error("hold strength must grow with distance from 50")
	}
}
