package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockpredictions/internal/model"
)

// Multi fans one alert out to several backends. Send returns the joined
// errors of failed backends but always attempts all of them.
type Multi struct {
	backends []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(backends ...Notifier) *Multi {
	return &Multi{backends: backends}
}

func (m *Multi) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, b := range m.backends {
		if err := b.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SignalAlert builds an alert from a generated trading signal. Alert level
// follows signal strength.
func SignalAlert(symbol string, sig model.TechnicalSignal) Alert {
	level := AlertInfo
	switch {
	case sig.Strength >= 0.8:
		level = AlertCritical
	case sig.Strength >= 0.6:
		level = AlertWarning
	}
	return Alert{
		Level:   level,
		Symbol:  symbol,
		Title:   fmt.Sprintf("%s: %s %s", symbol, sig.Indicator, strings.ToUpper(string(sig.Signal))),
		Message: fmt.Sprintf("%s (value=%.2f, strength=%.2f)",
			sig.Description, sig.Value, sig.Strength),
	}
}
