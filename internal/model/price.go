package model

import (
	"encoding/json"
	"time"
)

// PriceData represents one trading session's OHLCV record.
// A price series is a slice of PriceData ordered by ascending Date.
// Gaps (weekends, holidays) are expected and carry no special meaning.
type PriceData struct {
	Date   time.Time `json:"date"` // session date (day granularity, UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Return is the day-over-day fractional change relative to prev's close.
func (p *PriceData) Return(prev PriceData) float64 {
	if prev.Close == 0 {
		return 0
	}
	return (p.Close - prev.Close) / prev.Close
}

// JSON returns the JSON-encoded record (ignoring errors for hot-path usage).
func (p *PriceData) JSON() []byte {
	b, _ := json.Marshal(p)
	return b
}

// Closes extracts the close series from a price series.
func Closes(series []PriceData) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		out[i] = series[i].Close
	}
	return out
}

// Volumes extracts the volume series from a price series.
func Volumes(series []PriceData) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		out[i] = series[i].Volume
	}
	return out
}
