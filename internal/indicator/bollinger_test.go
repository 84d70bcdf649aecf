package indicator

import (
	"math"
	"strings"
	"testing"

	"stockpredictions/internal/model"
)

func TestAnalyzeBollingerBands_BandGeometry(t *testing.T) {
	prices := trendBars(40, 100, 0.8)
	a, err := AnalyzeBollingerBands(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Results) != 40-20+1 {
		t.Fatalf("expected %d results, got %d", 40-20+1, len(a.Results))
	}

	for i, r := range a.Results {
		if r.Upper < r.Middle || r.Middle < r.Lower {
			t.Errorf("result %d: band ordering violated (%.2f / %.2f / %.2f)", i, r.Upper, r.Middle, r.Lower)
		}
		// upper and lower are symmetric around middle
		if math.Abs((r.Upper-r.Middle)-(r.Middle-r.Lower)) > 1e-9 {
			t.Errorf("result %d: bands not symmetric around middle", i)
		}
	}
}

func TestAnalyzeBollingerBands_PercentBConsistency(t *testing.T) {
	prices := trendBars(40, 100, 0.8)
	a, err := AnalyzeBollingerBands(prices, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range a.Results {
		close := prices[19+i].Close
		if r.Upper == r.Lower {
			continue
		}
		want := (close - r.Lower) / (r.Upper - r.Lower)
		assertClose(t, r.PercentB, want, 1e-9, "percent B")
	}
}

func TestAnalyzeBollingerBands_FlatSeriesNeutral(t *testing.T) {
	a, err := AnalyzeBollingerBands(flatBars(30, 50), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range a.Results {
		// zero stddev collapses the bands; %B sits at the neutral midpoint
		assertClose(t, r.PercentB, 0.5, 1e-9, "flat %B")
		assertClose(t, r.Bandwidth, 0, 1e-12, "flat bandwidth")
		if !r.Squeeze {
			t.Errorf("result %d: zero bandwidth must count as squeeze", i)
		}
	}
}

func TestAnalyzeBollingerBands_SqueezeDetection(t *testing.T) {
	// 60 sideways bars with tiny wiggle, then a violent expansion
	closes := make([]float64, 0, 80)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+0.1*float64(i%2))
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 100+float64(i)*3)
	}
	a, err := AnalyzeBollingerBands(bars(closes...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mid-series, while sideways, must be squeezed
	mid := a.Results[20]
	if !mid.Squeeze {
		t.Errorf("sideways section should squeeze, bandwidth=%.4f", mid.Bandwidth)
	}
	// the expansion must release the squeeze
	last := a.Results[len(a.Results)-1]
	if last.Squeeze {
		t.Errorf("post-breakout bandwidth %.4f should not squeeze", last.Bandwidth)
	}
	if last.Bandwidth <= mid.Bandwidth {
		t.Error("bandwidth must expand through the breakout")
	}
}

func TestNearBand_NegativeBand(t *testing.T) {
	// The touch tolerance is relative to the band's magnitude. Dividing by
	// a raw negative band would make every price a touch.
	if nearBand(5, -2) {
		t.Error("price 5 must not touch band -2")
	}
	if !nearBand(-2.001, -2) {
		t.Error("price within tolerance of a negative band must touch it")
	}
	if nearBand(0, 0) {
		t.Error("collapsed band never touches")
	}
}

func TestAnalyzeBollingerBands_NegativeLowerBand(t *testing.T) {
	// Violent alternation pushes the stddev past the mean and the lower
	// band below zero. Closes nowhere near that band must not read as
	// lower-band touches or a lower-band walk.
	closes := make([]float64, 0, 40)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			closes = append(closes, 100)
		} else {
			closes = append(closes, 1)
		}
	}
	a, err := AnalyzeBollingerBands(bars(closes...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	negative := false
	for _, r := range a.Results {
		if r.Lower < 0 {
			negative = true
		}
	}
	if !negative {
		t.Fatal("window should produce a negative lower band")
	}

	for _, s := range a.Signals {
		if s.Signal == model.SignalBuy && strings.Contains(s.Description, "touched lower band") {
			t.Errorf("spurious lower-band touch: %s", s.Description)
		}
	}
	if a.BandWalk != BandWalkNone {
		t.Errorf("band walk = %s, want %s", a.BandWalk, BandWalkNone)
	}
}

func TestAnalyzeBollingerBands_BreakoutSignal(t *testing.T) {
	closes := make([]float64, 0, 40)
	for i := 0; i < 30; i++ {
		closes = append(closes, 100)
	}
	// jump far outside the (collapsed) band
	for i := 0; i < 10; i++ {
		closes = append(closes, 110+float64(i))
	}
	a, err := AnalyzeBollingerBands(bars(closes...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, s := range a.Signals {
		if s.Indicator == "Bollinger Bands" && s.Signal == model.SignalBuy && s.Strength >= 0.7 {
			found = true
		}
	}
	if !found {
		t.Error("expected an upper-band breakout buy signal")
	}
}
