package collector

import (
	"context"
	"math"
	"time"

	"SectorPulse/internal/calculator"
	"SectorPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols listed in Quotes are returned as-is; Failures forces an error;
// anything else gets a generated quote around Price.
type MockFetcher struct {
	Price    float64
	Days     int
	Quotes   map[string]model.Quote
	Failures map[string]error
}

var mockProfiles = map[string]struct{ name, sector string }{
	"RELIANCE":   {"Reliance Industries Limited", "Energy"},
	"TCS":        {"Tata Consultancy Services Limited", "Technology"},
	"HDFCBANK":   {"HDFC Bank Limited", "Financial Services"},
	"INFY":       {"Infosys Limited", "Technology"},
	"ICICIBANK":  {"ICICI Bank Limited", "Financial Services"},
	"HINDUNILVR": {"Hindustan Unilever Limited", "Consumer Defensive"},
	"ITC":        {"ITC Limited", "Consumer Defensive"},
	"SBIN":       {"State Bank of India", "Financial Services"},
	"BHARTIARTL": {"Bharti Airtel Limited", "Communication Services"},
	"KOTAKBANK":  {"Kotak Mahindra Bank Limited", "Financial Services"},
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	if err, ok := m.Failures[symbol]; ok {
		return model.Quote{}, err
	}
	if q, ok := m.Quotes[symbol]; ok {
		return q, nil
	}

	days := m.Days
	if days <= 0 {
		days = 100
	}
	price := m.Price
	if price <= 0 {
		price = 1000
	}
	// Spread symbols apart so the generated basket is not uniform.
	seed := 0
	for _, r := range symbol {
		seed += int(r)
	}
	base := price * (1 + float64(seed%17)/10)
	bars := generateMockBars(base, days, seed%2 == 0)

	profile, ok := mockProfiles[symbol]
	if !ok {
		profile.name, profile.sector = symbol, model.UnknownSector
	}
	last := bars[len(bars)-1]
	q := model.Quote{
		Symbol:       symbol,
		CompanyName:  profile.name,
		Sector:       profile.sector,
		CurrentPrice: last.Close,
		PERatio:      12 + float64(seed%25),
		MarketCap:    base * 500,
		Volume:       last.Volume * float64(1+seed%7),
		History:      bars,
		FetchedAt:    time.Now(),
	}
	if chg, err := calculator.DailyChangePct(bars); err == nil {
		q.DailyChangePct = chg
	}
	if h, l, err := calculator.Calculate52WeekRange(bars); err == nil {
		q.Week52High, q.Week52Low = h, l
	}
	return q, nil
}

// generateMockBars builds count daily bars trending up or down around
// basePrice with a small oscillation.
func generateMockBars(basePrice float64, count int, rising bool) []model.OHLCV {
	slope := 0.002
	if !rising {
		slope = -slope
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*slope + 0.01*math.Sin(float64(i)/3))
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
