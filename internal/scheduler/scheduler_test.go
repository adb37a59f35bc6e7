package scheduler

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/collector"
	"SectorPulse/internal/export"
	"SectorPulse/internal/recorder"
	"SectorPulse/internal/store"
	"SectorPulse/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, symbols []string) (*Scheduler, *captureNotifier, string) {
	t.Helper()
	st, err := store.New("")
	require.NoError(t, err)
	dir := t.TempDir()
	n := &captureNotifier{}
	s := NewScheduler(context.Background(),
		collector.NewCollector(fetcher, symbols, 2, 0),
		analyzer.NewEngine(),
		export.NewWriter(dir),
		st,
		recorder.NewNoopRecorder(),
		n,
		telemetry.New(),
	)
	return s, n, dir
}

func TestRunCycle(t *testing.T) {
	s, n, dir := newTestScheduler(t, &collector.MockFetcher{Price: 500, Days: 80}, []string{"TCS", "INFY", "ITC"})

	res, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	for _, r := range res.Records {
		assert.NotEqual(t, "Unknown", string(r.Signal), r.Symbol)
	}

	latest, id, ok := s.Store.Latest()
	require.True(t, ok)
	assert.Same(t, res, latest)
	assert.NotEmpty(t, id)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "one export directory per cycle")

	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "Market Overview")
}

func TestRunCycleEmptyBatchKeepsPreviousResult(t *testing.T) {
	m := &collector.MockFetcher{Price: 500, Days: 80}
	s, n, _ := newTestScheduler(t, m, []string{"TCS"})

	_, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	m.Failures = map[string]error{"TCS": errors.New("upstream down")}
	_, err = s.RunCycle(context.Background())
	assert.ErrorIs(t, err, analyzer.ErrEmptyBatch)

	_, _, ok := s.Store.Latest()
	assert.True(t, ok, "previous result still served")
	assert.Equal(t, analyzer.ErrEmptyBatch.Error(), s.Store.State().LastError)
	require.Len(t, n.msgs, 2)
	assert.Contains(t, n.msgs[1], "Fetch cycle failed")
}

func TestRunCycleRejectsOverlap(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, []string{"TCS"})
	s.running.Lock()
	defer s.running.Unlock()

	_, err := s.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleRunning)
	assert.Equal(t, "A fetch cycle is already running.", s.HandleCommand(context.Background(), "/refresh"))
}

func TestHandleCommand(t *testing.T) {
	s, n, _ := newTestScheduler(t, &collector.MockFetcher{Price: 500, Days: 80}, []string{"TCS", "ITC"})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/overview"), "No analysis yet")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/refresh")
	assert.Contains(t, s.HandleCommand(ctx, "   "), "Available commands")

	assert.Empty(t, s.HandleCommand(ctx, "/refresh"))
	require.Len(t, n.msgs, 1)

	assert.Contains(t, s.HandleCommand(ctx, "/overview@SectorPulseBot"), "Market Overview")
	assert.Contains(t, s.HandleCommand(ctx, "/signals"), "Trading Signals")
	sectors := s.HandleCommand(ctx, "/SECTORS")
	assert.True(t, strings.Contains(sectors, "Technology") && strings.Contains(sectors, "Consumer Defensive"))
}

func TestRegisterRejectsBadCron(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, []string{"TCS"})
	assert.Error(t, s.Register("not a cron"))
	assert.NoError(t, s.Register("0 30 16 * * 1-5"))
}
