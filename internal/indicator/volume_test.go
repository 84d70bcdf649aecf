package indicator

import (
	"testing"

	"stockpredictions/internal/model"
)

func TestAnalyzeVolume_OBVAccumulation(t *testing.T) {
	prices := bars(100, 102, 101, 101, 104)
	a, err := AnalyzeVolume(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// volume is 1000 per bar: up, down, flat, up
	want := []float64{0, 1000, 0, 0, 1000}
	if len(a.OBV) != len(want) {
		t.Fatalf("expected %d OBV points, got %d", len(want), len(a.OBV))
	}
	for i := range want {
		assertClose(t, a.OBV[i].Value, want[i], 1e-9, "obv value")
	}
}

func TestAnalyzeVolume_OBVMonotonicOnUpDays(t *testing.T) {
	prices := trendBars(15, 100, 1)
	a, err := AnalyzeVolume(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(a.OBV); i++ {
		if a.OBV[i].Value <= a.OBV[i-1].Value {
			t.Errorf("OBV must rise on every up day, fell at %d", i)
		}
	}
	last := a.OBV[len(a.OBV)-1]
	if last.Trend != model.SentimentBullish {
		t.Errorf("uptrend OBV trend: got %s, want bullish", last.Trend)
	}
}

func TestAnalyzeVolume_VPTFractionalChange(t *testing.T) {
	prices := bars(100, 110) // +10%
	a, err := AnalyzeVolume(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, a.VolumePriceTrend[1].Value, 1000*0.10, 1e-9, "vpt after +10% day")
}

func TestAnalyzeVolume_ADFlatBarContributesZero(t *testing.T) {
	flat := flatBars(5, 100)
	a, err := AnalyzeVolume(flat, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range a.AccumulationDistribution {
		assertClose(t, r.Value, 0, 1e-12, "flat-bar A/D")
		if r.Trend != model.SentimentNeutral {
			t.Errorf("flat A/D trend at %d: got %s", i, r.Trend)
		}
	}
}

func TestAnalyzeVolume_ADCloseAtHigh(t *testing.T) {
	// close at the bar high: money flow multiplier +1, full volume accumulates
	prices := []model.PriceData{
		{Date: testStart, Open: 10, High: 12, Low: 10, Close: 12, Volume: 500},
		{Date: testStart.AddDate(0, 0, 1), Open: 12, High: 14, Low: 12, Close: 14, Volume: 500},
	}
	a, err := AnalyzeVolume(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertClose(t, a.AccumulationDistribution[0].Value, 500, 1e-9, "first bar A/D")
	assertClose(t, a.AccumulationDistribution[1].Value, 1000, 1e-9, "cumulative A/D")
}

func TestAnalyzeVolume_LatestTrendSignals(t *testing.T) {
	prices := trendBars(15, 100, 1)
	a, err := AnalyzeVolume(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one latest-trend signal per indicator
	names := map[string]bool{}
	for _, s := range a.Signals {
		names[s.Indicator] = true
	}
	for _, want := range []string{"OBV", "VPT", "A/D"} {
		if !names[want] {
			t.Errorf("missing latest-trend signal for %s", want)
		}
	}
}

func TestAnalyzeVolume_MinBars(t *testing.T) {
	_, err := AnalyzeVolume(trendBars(1, 100, 1), Config{})
	if err == nil {
		t.Error("single bar: expected insufficient-data error")
	}
}
