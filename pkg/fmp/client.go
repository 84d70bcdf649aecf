// Package fmp is a client for the Financial Modeling Prep REST API. It
// covers the endpoints the analysis engine needs: daily historical prices
// and real-time quotes.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"stockpredictions/internal/model"
)

const defaultRoot = "https://financialmodelingprep.com/api/v3"

var routes = map[string]string{
	"api.historical": "/historical-price-full/%s",
	"api.quote":      "/quote/%s",
}

// ErrNoData means the provider returned an empty payload for the symbol.
var ErrNoData = errors.New("fmp: no data for symbol")

// Config configures the FMP client.
type Config struct {
	APIKey  string
	RootURL string        // default: https://financialmodelingprep.com/api/v3
	Timeout time.Duration // default: 10s
}

// Client is a Financial Modeling Prep API client.
type Client struct {
	apiKey     string
	rootURL    string
	httpClient *http.Client
}

// NewClient builds a client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		rootURL:    strings.TrimRight(cfg.RootURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) buildURL(route, symbol string, params url.Values) (string, error) {
	uri, ok := routes[route]
	if !ok {
		return "", fmt.Errorf("unknown route: %s", route)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return c.rootURL + fmt.Sprintf(uri, url.PathEscape(symbol)) + "?" + params.Encode(), nil
}

func (c *Client) get(ctx context.Context, route, symbol string, params url.Values, out any) error {
	reqURL, err := c.buildURL(route, symbol, params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fmp: %s: %w", route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fmp: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fmp: %s: status %d: %s", route, resp.StatusCode, truncate(raw, 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("fmp: %s: parse response: %w", route, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

type historicalResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"historical"`
}

// HistoricalPrices fetches up to limit daily bars for a symbol, returned in
// ascending date order. limit <= 0 fetches the provider default range.
func (c *Client) HistoricalPrices(ctx context.Context, symbol string, limit int) ([]model.PriceData, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("timeseries", fmt.Sprint(limit))
	}

	var res historicalResponse
	if err := c.get(ctx, "api.historical", symbol, params, &res); err != nil {
		return nil, err
	}
	if len(res.Historical) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	out := make([]model.PriceData, 0, len(res.Historical))
	for _, h := range res.Historical {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, fmt.Errorf("fmp: bad date %q: %w", h.Date, err)
		}
		out = append(out, model.PriceData{
			Date:   date,
			Open:   h.Open,
			High:   h.High,
			Low:    h.Low,
			Close:  h.Close,
			Volume: h.Volume,
		})
	}
	// FMP returns newest first
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Quote is a real-time price snapshot.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changesPercentage"`
	DayHigh       float64 `json:"dayHigh"`
	DayLow        float64 `json:"dayLow"`
	Volume        float64 `json:"volume"`
	MarketCap     float64 `json:"marketCap"`
	Timestamp     int64   `json:"timestamp"`
}

// GetQuote fetches a real-time quote for one symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var quotes []Quote
	if err := c.get(ctx, "api.quote", symbol, nil, &quotes); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return &quotes[0], nil
}
