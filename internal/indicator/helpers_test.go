package indicator

import (
	"math"
	"testing"
	"time"

	"stockpredictions/internal/model"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// bars builds a daily series from closes with a fixed 2-point range around
// each close and constant volume.
func bars(closes ...float64) []model.PriceData {
	out := make([]model.PriceData, len(closes))
	for i, c := range closes {
		out[i] = model.PriceData{
			Date:   testStart.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

// trendBars builds n bars starting at base, stepping the close by step each
// day.
func trendBars(n int, base, step float64) []model.PriceData {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + float64(i)*step
	}
	return bars(closes...)
}

// flatBars builds n identical bars with high == low == close.
func flatBars(n int, price float64) []model.PriceData {
	out := make([]model.PriceData, n)
	for i := range out {
		out[i] = model.PriceData{
			Date:   testStart.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}
	return out
}

func assertClose(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f", msg, got, want)
	}
}

func assertInRange(t *testing.T, v, lo, hi float64, msg string) {
	t.Helper()
	if v < lo || v > hi {
		t.Errorf("%s: %.6f outside [%.2f, %.2f]", msg, v, lo, hi)
	}
}

func countSignals(signals []model.TechnicalSignal, typ model.SignalType) int {
	n := 0
	for _, s := range signals {
		if s.Signal == typ {
			n++
		}
	}
	return n
}
