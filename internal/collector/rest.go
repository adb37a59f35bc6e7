package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"SectorPulse/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON quote service that
// exposes /api/v1/quote and /api/v1/bars/daily.
type RESTFetcher struct {
	BaseURL     string
	APIKey      string
	HistoryDays int
	Client      *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey string, historyDays int, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		HistoryDays: historyDays,
		Client:      newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one daily bar.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// restQuote is the expected JSON shape of a quote. Numeric fields are left
// untyped; services commonly send strings or nulls.
type restQuote struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"company_name"`
	Sector         string `json:"sector"`
	Price          any    `json:"price"`
	DailyChangePct any    `json:"daily_change_pct"`
	PERatio        any    `json:"pe_ratio"`
	MarketCapCr    any    `json:"market_cap_cr"`
	Week52High     any    `json:"week52_high"`
	Week52Low      any    `json:"week52_low"`
	Volume         any    `json:"volume"`
}

func (f *RESTFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	bars, err := f.fetchBars(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	if len(bars) == 0 {
		return model.Quote{}, fmt.Errorf("%s: %w", symbol, ErrNoHistory)
	}

	var rq restQuote
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	if err := f.getJSON(ctx, endpoint, &rq); err != nil {
		return model.Quote{}, fmt.Errorf("fetch quote: %w", err)
	}
	if rq.Symbol == "" {
		rq.Symbol = symbol
	}
	return model.Quote{
		Symbol:         rq.Symbol,
		CompanyName:    rq.CompanyName,
		Sector:         rq.Sector,
		CurrentPrice:   rq.Price,
		DailyChangePct: rq.DailyChangePct,
		PERatio:        rq.PERatio,
		MarketCap:      rq.MarketCapCr,
		Week52High:     rq.Week52High,
		Week52Low:      rq.Week52Low,
		Volume:         rq.Volume,
		History:        bars,
		FetchedAt:      time.Now(),
	}, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), f.HistoryDays)
	var rbars []restBar
	if err := f.getJSON(ctx, endpoint, &rbars); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(rbars))
	for _, rb := range rbars {
		bar, ok := newBar(rb.Timestamp, deref(rb.Open), deref(rb.High), deref(rb.Low), deref(rb.Close), deref(rb.Volume))
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
