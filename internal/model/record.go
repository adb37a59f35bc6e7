package model

// SymbolRecord is one traded instrument for one fetch cycle, decorated with
// the sector-relative and technical fields computed by the analyzer.
type SymbolRecord struct {
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name"`
	Sector         string  `json:"sector"`
	CurrentPrice   Num     `json:"current_price"`
	DailyChangePct Num     `json:"daily_change_pct"`
	PERatio        Num     `json:"pe_ratio"`
	MarketCap      Num     `json:"market_cap"` // crores
	Week52High     Num     `json:"week52_high"`
	Week52Low      Num     `json:"week52_low"`
	Volume         Num     `json:"volume"`
	History        []OHLCV `json:"-"`

	SectorPE   Num    `json:"sector_pe"`
	PEvsSector Num    `json:"pe_vs_sector"`
	SMA20      Num    `json:"sma_20"`
	SMA50      Num    `json:"sma_50"`
	Signal     Signal `json:"signal"`
}
