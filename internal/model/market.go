package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close column from bars.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Quote is the raw per-symbol payload handed over by a quote source for one
// fetch cycle. Numeric fields are kept untyped until the analyzer coerces them.
type Quote struct {
	Symbol         string
	CompanyName    string
	Sector         string
	CurrentPrice   any
	DailyChangePct any
	PERatio        any
	MarketCap      any // crores
	Week52High     any
	Week52Low      any
	Volume         any
	History        []OHLCV
	FetchedAt      time.Time
}
