package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *analyzer.Result {
	t.Helper()
	bars := make([]model.OHLCV, 60)
	for i := range bars {
		bars[i].Close = 100 + float64(i)
	}
	at := time.Date(2024, 6, 14, 16, 0, 0, 0, time.UTC)
	res, err := analyzer.NewEngine(analyzer.WithClock(func() time.Time { return at })).Compute([]model.Quote{
		{Symbol: "TCS", Sector: "Technology", CurrentPrice: 3850.0, DailyChangePct: 1.25, PERatio: 30.0, MarketCap: 1400000.0, Volume: 2500000.0, History: bars},
		{Symbol: "M&M", Sector: "Consumer Cyclical", CurrentPrice: 2900.0, DailyChangePct: -0.5, PERatio: 20.0, MarketCap: 350000.0, Volume: 900000.0},
	})
	require.NoError(t, err)
	return res
}

func TestFormatOverview(t *testing.T) {
	msg := FormatOverview(sampleResult(t))
	assert.Contains(t, msg, "14-06-2024 16:00")
	assert.Contains(t, msg, "₹17.50T")
	assert.Contains(t, msg, "₹1,750,000.00 Cr")
	assert.Contains(t, msg, "Average P/E: 25.00")
	assert.Contains(t, msg, "Market breadth: 50.0% advancing")
	assert.Contains(t, msg, "🟢 1 Buy | 🔴 0 Sell | ⚪ 1 Unknown")
	assert.Contains(t, msg, "1. TCS +1.25% (₹3,850.00)")
	assert.Contains(t, msg, "M&amp;M", "symbols are HTML-escaped")
	assert.Contains(t, msg, "1. TCS 2.50M")
}

func TestFormatSignalsAndSectors(t *testing.T) {
	res := sampleResult(t)
	sig := FormatSignals(res.Records)
	assert.Contains(t, sig, "🟢 <b>TCS</b> Buy | SMA20 149.50 | SMA50 134.50")
	assert.Contains(t, sig, "⚪ <b>M&amp;M</b> Unknown | SMA20 N/A | SMA50 N/A")

	sec := FormatSectors(res.Sectors, res.Records)
	assert.Contains(t, sec, "<b>Technology</b> (1)")
	assert.Contains(t, sec, "TCS 1.00x")
	assert.True(t, strings.Index(sec, "Consumer Cyclical") < strings.Index(sec, "Technology"))
}

func TestFormatCycleFailure(t *testing.T) {
	msg := FormatCycleFailure(analyzer.ErrEmptyBatch, 10)
	assert.Contains(t, msg, "analyzer: empty batch")
	assert.Contains(t, msg, "Symbols failed: 10")
}

func TestTelegramSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	require.NoError(t, tn.SendWithRetry(context.Background(), "hello", 0))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramSendErrorHidesToken(t *testing.T) {
	tn := NewTelegramNotifier("SECRET", "42", "")
	tn.APIBase = "http://127.0.0.1:1"
	err := tn.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestTelegramSendWithRetryCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tn.SendWithRetry(ctx, "hello", 3)
	assert.True(t, errors.Is(err, context.Canceled))
}
