// Package export lays a fetch cycle's result out as tables (one per sheet) and
// writes them as CSV files.
package export

import (
	"sort"
	"strconv"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"
)

// AnalysisDateLayout is how the analysis timestamp is written in exports.
const AnalysisDateLayout = "02-01-2006 15:04"

// Sheet names, also used as file stems.
const (
	SheetTradingSignals     = "trading_signals"
	SheetMarketOverview     = "market_overview"
	SheetTopGainers         = "top_gainers"
	SheetMostActive         = "most_active"
	SheetSectorDistribution = "sector_distribution"
	SheetSectorAnalysis     = "sector_analysis"
	SheetRawData            = "raw_stock_data"
)

// Table is one exportable sheet.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Tables returns every sheet for res, in a stable order.
func Tables(res *analyzer.Result) []Table {
	return []Table{
		TradingSignals(res.Records),
		MarketOverview(res.Snapshot),
		TopGainers(res.Snapshot),
		MostActive(res.Snapshot),
		SectorDistribution(res.Snapshot),
		SectorAnalysis(res.Sectors),
		RawData(res.Records),
	}
}

// TradingSignals is one row per symbol with its signal.
func TradingSignals(records []model.SymbolRecord) Table {
	t := Table{
		Name:   SheetTradingSignals,
		Header: []string{"Symbol", "Company Name", "Current Price", "Signal", "Daily Change %", "P/E Ratio", "Sector"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Symbol, r.CompanyName, num(r.CurrentPrice), string(r.Signal),
			num(r.DailyChangePct), num(r.PERatio), r.Sector,
		})
	}
	return t
}

// MarketOverview is a Metric/Value sheet of the snapshot's headline numbers.
func MarketOverview(s model.MarketSnapshot) Table {
	return Table{
		Name:   SheetMarketOverview,
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Analysis Date", s.AnalysisTimestamp.Format(AnalysisDateLayout)},
			{"Total Market Cap", float(s.TotalMarketCap)},
			{"Average P/E", num(s.AveragePE)},
			{"Market Breadth", float(s.MarketBreadth)},
		},
	}
}

// TopGainers lists the snapshot's top gainers.
func TopGainers(s model.MarketSnapshot) Table {
	return moversTable(SheetTopGainers, s.TopGainers)
}

// MostActive lists the snapshot's most traded symbols.
func MostActive(s model.MarketSnapshot) Table {
	return moversTable(SheetMostActive, s.MostActive)
}

func moversTable(name string, records []model.SymbolRecord) Table {
	t := Table{
		Name:   name,
		Header: []string{"Symbol", "Company Name", "Current Price", "Daily Change %", "Volume"},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{r.Symbol, r.CompanyName, num(r.CurrentPrice), num(r.DailyChangePct), num(r.Volume)})
	}
	return t
}

// SectorDistribution is summed market cap per sector, sorted by sector.
func SectorDistribution(s model.MarketSnapshot) Table {
	t := Table{Name: SheetSectorDistribution, Header: []string{"Sector", "Market Cap (Cr)"}}
	sectors := make([]string, 0, len(s.SectorDistribution))
	for sector := range s.SectorDistribution {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		t.Rows = append(t.Rows, []string{sector, float(s.SectorDistribution[sector])})
	}
	return t
}

// SectorAnalysis is the full per-sector aggregate.
func SectorAnalysis(stats []model.SectorStats) Table {
	t := Table{
		Name: SheetSectorAnalysis,
		Header: []string{
			"Sector", "Companies", "Market Cap Sum (Cr)", "Market Cap Mean (Cr)",
			"P/E Mean", "P/E Min", "P/E Max",
			"Daily Change Mean %", "Daily Change Min %", "Daily Change Max %", "Volume",
		},
	}
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.Sector, strconv.Itoa(s.Count), float(s.TotalMarketCap), num(s.MeanMarketCap),
			num(s.MeanPE), num(s.MinPE), num(s.MaxPE),
			num(s.MeanDailyChange), num(s.MinDailyChange), num(s.MaxDailyChange), float(s.TotalVolume),
		})
	}
	return t
}

// RawData is every input field except the price history.
func RawData(records []model.SymbolRecord) Table {
	t := Table{
		Name: SheetRawData,
		Header: []string{
			"Symbol", "Company Name", "Sector", "Current Price", "Daily Change %",
			"Market Cap (Cr)", "P/E Ratio", "52W High", "52W Low", "Volume",
		},
	}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Symbol, r.CompanyName, r.Sector, num(r.CurrentPrice), num(r.DailyChangePct),
			num(r.MarketCap), num(r.PERatio), num(r.Week52High), num(r.Week52Low), num(r.Volume),
		})
	}
	return t
}

func num(n model.Num) string {
	if !n.Valid {
		return ""
	}
	return float(n.Float64)
}

func float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
