// Package series provides windowed statistics primitives over price and
// value series: moving averages, deviation, true range, gain/loss splits,
// crossover detection, and correlation.
//
// All functions are pure: no shared state, no I/O. Inputs are never mutated.
// Callers must not mutate returned slices in place.
package series

import (
	"errors"
	"fmt"
	"math"

	"stockpredictions/internal/model"
)

var (
	// ErrInvalidPeriod is returned when a period is <= 0 or exceeds the
	// series length.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrLengthMismatch is returned when two series that must align differ
	// in length or are empty.
	ErrLengthMismatch = errors.New("series length mismatch")
)

func checkPeriod(n, period int) error {
	if period <= 0 {
		return fmt.Errorf("%w: period %d must be positive", ErrInvalidPeriod, period)
	}
	if period > n {
		return fmt.Errorf("%w: period %d exceeds series length %d", ErrInvalidPeriod, period, n)
	}
	return nil
}

// SMA computes the simple moving average: the arithmetic mean of each
// trailing window of `period` values. Result length is len(values)-period+1.
func SMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("sma: %w", err)
	}

	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

// EMA computes the exponential moving average with smoothing multiplier
// 2/(period+1). The first output is the simple average of the first `period`
// values (SMA seed); subsequent points follow the recurrence
// EMA[i] = value*k + EMA[i-1]*(1-k). Result length is len(values)-period+1.
func EMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("ema: %w", err)
	}

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	prev := seed
	for _, v := range values[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out, nil
}

// WilderSmooth computes Wilder's smoothed moving average: SMA seed, then
// smoothed[i] = (prev*(period-1) + value) / period. Used by ADX.
func WilderSmooth(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("wilder: %w", err)
	}

	out := make([]float64, 0, len(values)-period+1)
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	p := float64(period)
	prev := seed
	for _, v := range values[period:] {
		prev = (prev*(p-1) + v) / p
		out = append(out, prev)
	}
	return out, nil
}

// StdDev computes the population standard deviation (divide by period, not
// period-1) over each trailing window. Result length is len(values)-period+1.
func StdDev(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("stddev: %w", err)
	}

	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := 0.0
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)

		variance := 0.0
		for _, v := range window {
			d := v - mean
			variance += d * d
		}
		variance /= float64(period)
		out = append(out, math.Sqrt(variance))
	}
	return out, nil
}

// TrueRange computes Wilder's true range per bar:
// max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and uses high-low.
// Result length equals len(series).
func TrueRange(series []model.PriceData) []float64 {
	out := make([]float64, len(series))
	for i, bar := range series {
		tr := bar.High - bar.Low
		if i > 0 {
			prevClose := series[i-1].Close
			tr = math.Max(tr, math.Abs(bar.High-prevClose))
			tr = math.Max(tr, math.Abs(bar.Low-prevClose))
		}
		out[i] = tr
	}
	return out
}

// ATR computes the average true range as the SMA of the true-range series.
func ATR(series []model.PriceData, period int) ([]float64, error) {
	out, err := SMA(TrueRange(series), period)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	return out, nil
}

// GainsLosses splits day-over-day deltas into non-negative gains and
// non-negative losses (absolute value of negative deltas). Both returned
// slices have length len(prices)-1.
func GainsLosses(prices []float64) (gains, losses []float64) {
	if len(prices) < 2 {
		return nil, nil
	}
	gains = make([]float64, len(prices)-1)
	losses = make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}
	return gains, losses
}

// Crossovers classifies, per index, whether series a crosses series b:
// bullish when a-b transitions from <=0 to >0, bearish when it transitions
// from >=0 to <0. An exactly-zero previous difference is a valid crossover
// origin in both directions. The result has the same length as the inputs;
// index 0 is always CrossNone.
func Crossovers(a, b []float64) ([]model.Crossover, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("crossovers: %w: len(a)=%d len(b)=%d", ErrLengthMismatch, len(a), len(b))
	}

	out := make([]model.Crossover, len(a))
	out[0] = model.CrossNone
	for i := 1; i < len(a); i++ {
		prevDiff := a[i-1] - b[i-1]
		diff := a[i] - b[i]
		switch {
		case prevDiff <= 0 && diff > 0:
			out[i] = model.CrossBullish
		case prevDiff >= 0 && diff < 0:
			out[i] = model.CrossBearish
		default:
			out[i] = model.CrossNone
		}
	}
	return out, nil
}

// Correlation computes the Pearson correlation coefficient of two equal-length
// series. Returns 0 (not NaN) when either series has zero variance.
func Correlation(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("correlation: %w: len(a)=%d len(b)=%d", ErrLengthMismatch, len(a), len(b))
	}

	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom == 0 {
		return 0, nil
	}
	return cov / denom, nil
}

// RollingMax computes the maximum of each trailing window of `period` values.
// Result length is len(values)-period+1.
func RollingMax(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("rolling max: %w", err)
	}
	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		max := values[i-period+1]
		for _, v := range values[i-period+2 : i+1] {
			if v > max {
				max = v
			}
		}
		out = append(out, max)
	}
	return out, nil
}

// RollingMin computes the minimum of each trailing window of `period` values.
// Result length is len(values)-period+1.
func RollingMin(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period); err != nil {
		return nil, fmt.Errorf("rolling min: %w", err)
	}
	out := make([]float64, 0, len(values)-period+1)
	for i := period - 1; i < len(values); i++ {
		min := values[i-period+1]
		for _, v := range values[i-period+2 : i+1] {
			if v < min {
				min = v
			}
		}
		out = append(out, min)
	}
	return out, nil
}
