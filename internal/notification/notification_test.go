package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stockpredictions/internal/model"
)

func TestSignalAlert_LevelFollowsStrength(t *testing.T) {
	cases := []struct {
		strength float64
		want     AlertLevel
	}{
		{0.5, AlertInfo},
		{0.6, AlertWarning},
		{0.79, AlertWarning},
		{0.8, AlertCritical},
		{1.0, AlertCritical},
	}
	for _, tc := range cases {
		sig := model.TechnicalSignal{
			Indicator: "RSI",
			Signal:    model.SignalBuy,
			Strength:  tc.strength,
			Value:     28.4,
		}
		a := SignalAlert("AAPL", sig)
		if a.Level != tc.want {
			t.Errorf("strength %.2f: level = %s, want %s", tc.strength, a.Level, tc.want)
		}
		if a.Symbol != "AAPL" {
			t.Errorf("strength %.2f: symbol = %q, want AAPL", tc.strength, a.Symbol)
		}
		if !strings.Contains(a.Title, "AAPL") || !strings.Contains(a.Title, "BUY") {
			t.Errorf("title %q should carry symbol and direction", a.Title)
		}
	}
}

func TestWebhookNotifier_PayloadCarriesSymbol(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL)
	alert := SignalAlert("TSLA", model.TechnicalSignal{
		Indicator: "MACD", Signal: model.SignalSell, Strength: 0.9, Value: -1.2,
	})
	if err := n.Send(context.Background(), alert); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got["symbol"] != "TSLA" {
		t.Errorf("payload symbol = %v, want TSLA", got["symbol"])
	}
	if got["level"] != string(AlertCritical) {
		t.Errorf("payload level = %v, want %s", got["level"], AlertCritical)
	}
	if _, err := time.Parse(time.RFC3339Nano, got["ts"].(string)); err != nil {
		t.Errorf("payload ts %v not RFC3339: %v", got["ts"], err)
	}
}

func TestWebhookNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), Alert{Level: AlertInfo, Title: "t"}); err == nil {
		t.Error("expected error on 502 response")
	}
}

func TestTelegramNotifier_SendsCashtag(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/bottoken/") {
			t.Errorf("path = %q, want bot token prefix", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	n := NewTelegramNotifier("token", "chat42")
	n.apiBase = srv.URL

	alert := SignalAlert("MSFT", model.TechnicalSignal{
		Indicator: "Bollinger Bands", Signal: model.SignalBuy, Strength: 0.85, Value: 310,
	})
	if err := n.Send(context.Background(), alert); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got["chat_id"] != "chat42" {
		t.Errorf("chat_id = %v, want chat42", got["chat_id"])
	}
	text, _ := got["text"].(string)
	if !strings.Contains(text, "$MSFT") {
		t.Errorf("text %q should end with the cashtag", text)
	}
	if !strings.Contains(text, "🚨") {
		t.Errorf("critical alert text %q should carry the critical emoji", text)
	}
}

func TestFormatTelegramText_EscapesMarkdown(t *testing.T) {
	text := formatTelegramText(Alert{
		Level:   AlertWarning,
		Symbol:  "BRK.B",
		Title:   "BRK.B: RSI SELL",
		Message: "overbought (value=81.20, strength=0.70)",
	})
	for _, want := range []string{`BRK\.B`, `\(value`, `$BRK\.B`} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing escaped fragment %q", text, want)
		}
	}
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Send(ctx context.Context, alert Alert) error {
	s.calls++
	return s.err
}

func TestMulti_AttemptsAllBackends(t *testing.T) {
	failing := &stubNotifier{err: errors.New("down")}
	ok := &stubNotifier{}
	m := NewMulti(failing, ok)

	err := m.Send(context.Background(), Alert{Level: AlertInfo, Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Errorf("expected joined backend error, got %v", err)
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Errorf("all backends must be attempted: calls %d/%d", failing.calls, ok.calls)
	}
}
