package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockpredictions/pkg/fmp"
)

func TestPathSymbol(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/v1/analysis/AAPL", "AAPL"},
		{"/api/v1/analysis/aapl", "AAPL"},
		{"/api/v1/analysis/AAPL/", "AAPL"},
		{"/api/v1/analysis/", ""},
		{"/api/v1/analysis", ""},
		{"/api/v1/analysis/AAPL/extra", ""},
	}
	for _, tc := range cases {
		if got := pathSymbol(tc.path, "/api/v1/analysis"); got != tc.want {
			t.Errorf("pathSymbol(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func newQuoteBackend(t *testing.T) *fmp.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote/AAPL":
			w.Write([]byte(`[{"symbol":"AAPL","price":190.5}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(srv.Close)
	return fmp.NewClient(fmp.Config{APIKey: "k", RootURL: srv.URL})
}

func TestRouter_Quote(t *testing.T) {
	s := NewServer(nil, nil, newQuoteBackend(t), nil, nil, slog.Default())
	ts := httptest.NewServer(NewRouter(s))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/quote/AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var q fmp.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Symbol != "AAPL" || q.Price != 190.5 {
		t.Errorf("quote = %+v", q)
	}
}

func TestRouter_QuoteUnknownSymbol(t *testing.T) {
	s := NewServer(nil, nil, newQuoteBackend(t), nil, nil, slog.Default())
	ts := httptest.NewServer(NewRouter(s))
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/quote/ZZZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a symbol the provider has no data for", resp.StatusCode)
	}
}

func TestHandleHealth_NoChecker(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, nil, slog.Default())
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleAnalysis_BadRequests(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, nil, slog.Default())

	// missing symbol
	rec := httptest.NewRecorder()
	s.handleAnalysis(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing symbol: status = %d, want 400", rec.Code)
	}

	// non-numeric bars
	rec = httptest.NewRecorder()
	s.handleAnalysis(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/AAPL?bars=lots", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad bars: status = %d, want 400", rec.Code)
	}

	// negative bars
	rec = httptest.NewRecorder()
	s.handleAnalysis(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/AAPL?bars=-5", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative bars: status = %d, want 400", rec.Code)
	}
}

func TestHandleStream_Disabled(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, nil, slog.Default())
	rec := httptest.NewRecorder()
	s.handleStream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when streaming is off", rec.Code)
	}
}
