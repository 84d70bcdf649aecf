package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stockpredictions/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPrices(n int) []model.PriceData {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PriceData, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = model.PriceData{
			Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}
	return out
}

func TestPriceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prices := testPrices(10)

	if err := s.SavePrices(ctx, "AAPL", prices); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadPrices(ctx, "AAPL", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 10 {
		t.Fatalf("loaded %d bars, want 10", len(loaded))
	}
	for i, p := range loaded {
		if !p.Date.Equal(prices[i].Date) || p.Close != prices[i].Close {
			t.Errorf("bar %d: got %v/%.1f, want %v/%.1f", i, p.Date, p.Close, prices[i].Date, prices[i].Close)
		}
	}
}

func TestLoadPrices_LimitKeepsNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prices := testPrices(10)
	if err := s.SavePrices(ctx, "AAPL", prices); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadPrices(ctx, "AAPL", 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d bars, want 3", len(loaded))
	}
	// the 3 newest, still ascending
	if !loaded[0].Date.Equal(prices[7].Date) || !loaded[2].Date.Equal(prices[9].Date) {
		t.Errorf("limit must keep the newest bars: got %v..%v", loaded[0].Date, loaded[2].Date)
	}
}

func TestSavePrices_UpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prices := testPrices(5)

	if err := s.SavePrices(ctx, "AAPL", prices); err != nil {
		t.Fatalf("save: %v", err)
	}
	prices[4].Close = 999
	if err := s.SavePrices(ctx, "AAPL", prices); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	loaded, err := s.LoadPrices(ctx, "AAPL", 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 5 {
		t.Fatalf("loaded %d bars after upsert, want 5", len(loaded))
	}
	if loaded[4].Close != 999 {
		t.Errorf("upsert did not replace: close = %.1f", loaded[4].Close)
	}
}

func TestLastPriceDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.LastPriceDate(ctx, "AAPL")
	if err != nil {
		t.Fatalf("empty table: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("empty table: got %v, want zero time", got)
	}

	prices := testPrices(5)
	if err := s.SavePrices(ctx, "AAPL", prices); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.LastPriceDate(ctx, "AAPL")
	if err != nil {
		t.Fatalf("after save: %v", err)
	}
	if !got.Equal(prices[4].Date) {
		t.Errorf("got %v, want %v", got, prices[4].Date)
	}

	// other symbols do not leak
	got, err = s.LastPriceDate(ctx, "MSFT")
	if err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("other symbol: got %v, want zero time", got)
	}
}

func TestSaveAnalysisAndRecentSignals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	result := &model.TechnicalAnalysisResult{
		Symbol:    "AAPL",
		Timestamp: ts,
		Summary: model.Summary{
			Overall:        model.SentimentBullish,
			Strength:       0.7,
			Confidence:     0.5,
			TrendDirection: model.TrendUp,
			Momentum:       model.MomentumStable,
			Volatility:     model.VolatilityMedium,
		},
		Signals: []model.TechnicalSignal{
			{Indicator: "RSI", Signal: model.SignalBuy, Strength: 0.8, Value: 28, Timestamp: ts.Add(-time.Hour), Description: "oversold"},
			{Indicator: "MACD", Signal: model.SignalSell, Strength: 0.6, Value: -1.2, Timestamp: ts, Description: "bearish crossover"},
		},
	}
	if err := s.SaveAnalysis(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	signals, err := s.RecentSignals(ctx, "AAPL", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}
	// newest first
	if signals[0].Indicator != "MACD" || signals[1].Indicator != "RSI" {
		t.Errorf("order = %s,%s; want MACD,RSI", signals[0].Indicator, signals[1].Indicator)
	}
	if signals[0].Signal != model.SignalSell || signals[1].Strength != 0.8 {
		t.Errorf("fields did not round-trip: %+v", signals)
	}
}
