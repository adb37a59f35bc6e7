package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *analyzer.Result {
	t.Helper()
	at := time.Date(2024, 6, 14, 15, 30, 0, 0, time.UTC)
	e := analyzer.NewEngine(analyzer.WithClock(func() time.Time { return at }))
	res, err := e.Compute([]model.Quote{
		{Symbol: "TCS", CompanyName: "Tata Consultancy Services", Sector: "Technology", CurrentPrice: 3850.5, DailyChangePct: 1.2, PERatio: 30.0, MarketCap: 1400000.0, Volume: 2_000_000.0},
		{Symbol: "INFY", CompanyName: "Infosys", Sector: "Technology", CurrentPrice: 1450.0, DailyChangePct: -0.4, PERatio: "n/a", MarketCap: 600000.0, Volume: 5_000_000.0},
		{Symbol: "ITC", CompanyName: "ITC Ltd", Sector: "Consumer Defensive", CurrentPrice: 430.0, DailyChangePct: 0.8, PERatio: 26.0, MarketCap: 540000.0, Volume: 9_000_000.0},
	})
	require.NoError(t, err)
	return res
}

func TestTradingSignals(t *testing.T) {
	res := sampleResult(t)
	tbl := TradingSignals(res.Records)
	assert.Equal(t, []string{"Symbol", "Company Name", "Current Price", "Signal", "Daily Change %", "P/E Ratio", "Sector"}, tbl.Header)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"TCS", "Tata Consultancy Services", "3850.5", "Unknown", "1.2", "30", "Technology"}, tbl.Rows[0])
	assert.Equal(t, "", tbl.Rows[1][5], "missing P/E exported as empty cell")
}

func TestMarketOverview(t *testing.T) {
	res := sampleResult(t)
	tbl := MarketOverview(res.Snapshot)
	require.Len(t, tbl.Rows, 4)
	assert.Equal(t, []string{"Analysis Date", "14-06-2024 15:30"}, tbl.Rows[0])
	assert.Equal(t, []string{"Total Market Cap", "2540000"}, tbl.Rows[1])
	assert.Equal(t, []string{"Average P/E", "28"}, tbl.Rows[2])
	assert.Equal(t, "Market Breadth", tbl.Rows[3][0])
}

func TestSectorTables(t *testing.T) {
	res := sampleResult(t)
	dist := SectorDistribution(res.Snapshot)
	assert.Equal(t, [][]string{{"Consumer Defensive", "540000"}, {"Technology", "2000000"}}, dist.Rows)

	analysis := SectorAnalysis(res.Sectors)
	require.Len(t, analysis.Rows, 2)
	assert.Equal(t, "Technology", analysis.Rows[1][0])
	assert.Equal(t, "2", analysis.Rows[1][1])
	assert.Len(t, analysis.Rows[1], len(analysis.Header))
}

func TestMovers(t *testing.T) {
	res := sampleResult(t)
	gainers := TopGainers(res.Snapshot)
	require.Len(t, gainers.Rows, 3)
	assert.Equal(t, "TCS", gainers.Rows[0][0])
	active := MostActive(res.Snapshot)
	assert.Equal(t, "ITC", active.Rows[0][0])

	tables := Tables(res)
	assert.Equal(t, gainers, tables[2])
	assert.Equal(t, active, tables[3])
}

func TestWriterWritesEverySheet(t *testing.T) {
	res := sampleResult(t)
	w := NewWriter(t.TempDir())
	dir, err := w.Write(res)
	require.NoError(t, err)
	assert.Equal(t, "20240614-153000", filepath.Base(dir))

	for _, tbl := range Tables(res) {
		f, err := os.Open(filepath.Join(dir, tbl.Name+".csv"))
		require.NoError(t, err, tbl.Name)
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, tbl.Header, rows[0])
		assert.Len(t, rows, len(tbl.Rows)+1, tbl.Name)
	}
}
