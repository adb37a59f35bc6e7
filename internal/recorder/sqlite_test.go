package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingBars(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Close: 100 + float64(i)}
	}
	return bars
}

func computeAt(t *testing.T, at time.Time, quotes []model.Quote) *analyzer.Result {
	t.Helper()
	res, err := analyzer.NewEngine(analyzer.WithClock(func() time.Time { return at })).Compute(quotes)
	require.NoError(t, err)
	return res
}

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)
	defer r.Close()
	ctx := context.Background()

	day1 := time.Date(2024, 6, 13, 16, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	quotes := []model.Quote{
		{Symbol: "TCS", Sector: "Technology", CurrentPrice: 160.0, PERatio: 30.0, MarketCap: 1000.0, History: risingBars(60)},
		{Symbol: "INFY", Sector: "Technology", CurrentPrice: 1450.0, PERatio: nil, MarketCap: 500.0},
	}

	require.NoError(t, r.RecordCycle(ctx, &Cycle{ID: "c1", StartedAt: day1, Source: "mock", Fetched: 2, Result: computeAt(t, day1, quotes)}))
	require.NoError(t, r.RecordCycle(ctx, &Cycle{ID: "c2", StartedAt: day2, Source: "mock", Fetched: 2, Result: computeAt(t, day2, quotes)}))

	hist, err := r.SignalHistory(ctx, "tcs", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "c2", hist[0].CycleID)
	assert.Equal(t, model.SignalBuy, hist[0].Signal)
	assert.True(t, hist[0].SMA50.Valid)
	assert.Equal(t, day2.Unix(), hist[0].AnalyzedAt.Unix())

	hist, err = r.SignalHistory(ctx, "INFY", 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, model.SignalUnknown, hist[0].Signal)
	assert.False(t, hist[0].SMA20.Valid, "absent values stored as NULL")

	var sectors, buys int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM sector_stats WHERE cycle_id = 'c1'`).Scan(&sectors))
	require.NoError(t, r.db.QueryRow(`SELECT buy_count FROM snapshots WHERE cycle_id = 'c1'`).Scan(&buys))
	assert.Equal(t, 1, sectors)
	assert.Equal(t, 1, buys)
}

func TestSQLiteRecorderFailure(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordFailure(context.Background(), &FailureEvent{
		CycleID: "c9", StartedAt: time.Now(), Source: "yahoo", Failed: 10, Reason: analyzer.ErrEmptyBatch.Error(),
	}))
	var reason string
	require.NoError(t, r.db.QueryRow(`SELECT reason FROM cycle_failures WHERE cycle_id = 'c9'`).Scan(&reason))
	assert.Equal(t, "analyzer: empty batch", reason)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCycle(context.Background(), &Cycle{}))
	hist, err := r.SignalHistory(context.Background(), "TCS", 5)
	assert.NoError(t, err)
	assert.Empty(t, hist)
	assert.NoError(t, r.Close())
}
