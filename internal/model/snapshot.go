package model

import "time"

// SectorStats aggregates all records sharing a sector.
type SectorStats struct {
	Sector          string  `json:"sector"`
	Count           int     `json:"count"`
	MeanPE          Num     `json:"mean_pe"`
	MinPE           Num     `json:"min_pe"`
	MaxPE           Num     `json:"max_pe"`
	TotalMarketCap  float64 `json:"total_market_cap"`
	MeanMarketCap   Num     `json:"mean_market_cap"`
	TotalVolume     float64 `json:"total_volume"`
	MeanDailyChange Num     `json:"mean_daily_change"`
	MinDailyChange  Num     `json:"min_daily_change"`
	MaxDailyChange  Num     `json:"max_daily_change"`
}

// MarketSnapshot summarizes all records of one fetch cycle. It is built once
// by the analyzer and never modified afterwards; a new cycle yields a new
// snapshot.
type MarketSnapshot struct {
	AnalysisTimestamp  time.Time          `json:"analysis_timestamp"`
	TotalMarketCap     float64            `json:"total_market_cap"`
	AveragePE          Num                `json:"average_pe"`
	MarketBreadth      float64            `json:"market_breadth"`
	TopGainers         []SymbolRecord     `json:"top_gainers"`
	MostActive         []SymbolRecord     `json:"most_active"`
	SectorDistribution map[string]float64 `json:"sector_distribution"`
}
