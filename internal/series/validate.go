package series

import (
	"errors"
	"fmt"
	"sort"

	"stockpredictions/internal/model"
)

// ErrInvalidData is returned for series that violate the OHLCV invariants.
// Validation is the single required error-detection gate: every indicator
// calculation assumes its input already passed Validate.
var ErrInvalidData = errors.New("invalid price data")

// Validate checks a price series against the data-integrity invariants:
// non-empty, every record carries a date, high >= low, and all OHLCV fields
// non-negative. The first violation is returned with the offending index.
func Validate(series []model.PriceData) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: price data must be a non-empty array", ErrInvalidData)
	}

	for i, bar := range series {
		if bar.Date.IsZero() {
			return fmt.Errorf("%w: record %d is missing a date", ErrInvalidData, i)
		}
		if bar.High < bar.Low {
			return fmt.Errorf("%w: record %d: high price cannot be less than low price (high=%.4f low=%.4f)",
				ErrInvalidData, i, bar.High, bar.Low)
		}
		if bar.Open < 0 || bar.High < 0 || bar.Low < 0 || bar.Close < 0 || bar.Volume < 0 {
			return fmt.Errorf("%w: record %d contains negative values", ErrInvalidData, i)
		}
	}
	return nil
}

// Sort returns a new series ordered by ascending date. The input is not
// mutated; ordering among equal dates is stable.
func Sort(series []model.PriceData) []model.PriceData {
	out := make([]model.PriceData, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
