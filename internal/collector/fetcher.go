package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SectorPulse/internal/model"
)

// ErrNoHistory is returned by a fetcher when a symbol has no price history.
// Such symbols are skipped for the cycle.
var ErrNoHistory = errors.New("no price history")

// Fetcher defines the interface for fetching one symbol's quote.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	Name() string
}

// newHTTPClient returns a client with a 30s timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// displaySymbol strips an exchange suffix such as ".NS" from a ticker.
func displaySymbol(ticker, suffix string) string {
	if suffix != "" && strings.HasSuffix(strings.ToUpper(ticker), strings.ToUpper(suffix)) {
		return ticker[:len(ticker)-len(suffix)]
	}
	return ticker
}

// tickerFor appends the exchange suffix unless the symbol already carries one.
func tickerFor(symbol, suffix string) string {
	if suffix == "" || strings.Contains(symbol, ".") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + suffix
}
