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

	"SectorPulse/internal/calculator"
	"SectorPulse/internal/model"

	"github.com/rs/zerolog/log"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// CroresPerUnit converts a raw rupee market cap into crores.
const CroresPerUnit = 1e7

// YahooFetcher implements Fetcher using the Yahoo Finance public API: the
// chart endpoint for history and price, quoteSummary for profile and
// valuation fields.
type YahooFetcher struct {
	BaseURL     string
	Suffix      string
	HistoryDays int
	Client      *http.Client
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, suffix string, historyDays int, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL:     baseURL,
		Suffix:      suffix,
		HistoryDays: historyDays,
		Client:      newHTTPClient(proxyURL),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				RegularMarketVol   *float64 `json:"regularMarketVolume"`
				FiftyTwoWeekHigh   *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    *float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooSummary is the quoteSummary response. Numeric fields arrive as
// {"raw": x, "fmt": "..."} objects and are decoded untyped.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				TrailingPE any `json:"trailingPE"`
				MarketCap  any `json:"marketCap"`
				Volume     any `json:"volume"`
			} `json:"summaryDetail"`
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// at returns vals[i], or NaN when the series is short or the point is null.
func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

// newBar builds a bar from possibly missing prices. A bar without a close is
// rejected; missing open, high or low fall back to the close and a missing
// volume to zero.
func newBar(ts int64, o, h, l, c, v float64) (model.OHLCV, bool) {
	if math.IsNaN(c) {
		return model.OHLCV{}, false
	}
	orClose := func(x float64) float64 {
		if math.IsNaN(x) {
			return c
		}
		return x
	}
	if math.IsNaN(v) {
		v = 0
	}
	return model.OHLCV{Time: time.Unix(ts, 0), Open: orClose(o), High: orClose(h), Low: orClose(l), Close: c, Volume: v}, true
}

func (f *YahooFetcher) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func chartRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) fetchChart(ctx context.Context, ticker string) (*yahooChart, []model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(ticker), chartRange(f.HistoryDays))

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, nil, err
	}
	if chart.Chart.Error != nil {
		return nil, nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return &chart, nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar, ok := newBar(ts, at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i), at(quote.Volume, i))
		if !ok {
			continue // no close: holiday or halted session
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if f.HistoryDays > 0 && len(bars) > f.HistoryDays {
		bars = bars[len(bars)-f.HistoryDays:]
	}
	return &chart, bars, nil
}

func (f *YahooFetcher) fetchSummary(ctx context.Context, ticker string) (*yahooSummary, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail,price",
		f.BaseURL, url.PathEscape(ticker))
	var s yahooSummary
	if err := f.get(ctx, u, &s); err != nil {
		return nil, err
	}
	if s.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", s.QuoteSummary.Error.Description)
	}
	if len(s.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: empty quote summary")
	}
	return &s, nil
}

// FetchQuote fetches history, price and profile for one symbol. A missing
// profile is tolerated; the quote then carries no sector, P/E or market cap.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	ticker := tickerFor(symbol, f.Suffix)
	chart, bars, err := f.fetchChart(ctx, ticker)
	if err != nil {
		return model.Quote{}, err
	}
	if len(bars) == 0 {
		return model.Quote{}, fmt.Errorf("%s: %w", ticker, ErrNoHistory)
	}

	meta := chart.Chart.Result[0].Meta
	last := bars[len(bars)-1]
	q := model.Quote{
		Symbol:       displaySymbol(ticker, f.Suffix),
		CompanyName:  firstNonEmpty(meta.LongName, meta.ShortName, symbol),
		CurrentPrice: last.Close,
		Volume:       last.Volume,
		History:      bars,
		FetchedAt:    time.Now(),
	}
	if meta.RegularMarketPrice != nil {
		q.CurrentPrice = *meta.RegularMarketPrice
	}
	if meta.RegularMarketVol != nil {
		q.Volume = *meta.RegularMarketVol
	}
	if chg, err := calculator.DailyChangePct(bars); err == nil {
		q.DailyChangePct = chg
	}
	if meta.FiftyTwoWeekHigh != nil && meta.FiftyTwoWeekLow != nil {
		q.Week52High, q.Week52Low = *meta.FiftyTwoWeekHigh, *meta.FiftyTwoWeekLow
	} else if h, l, err := calculator.Calculate52WeekRange(bars); err == nil {
		q.Week52High, q.Week52Low = h, l
	}

	summary, err := f.fetchSummary(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("symbol", q.Symbol).Msg("quote summary unavailable")
		return q, nil
	}
	res := summary.QuoteSummary.Result[0]
	q.Sector = res.AssetProfile.Sector
	q.CompanyName = firstNonEmpty(res.Price.LongName, res.Price.ShortName, q.CompanyName)
	q.PERatio = res.SummaryDetail.TrailingPE
	if mc := model.ParseNum(res.SummaryDetail.MarketCap); mc.Valid {
		q.MarketCap = mc.Float64 / CroresPerUnit
	}
	return q, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
