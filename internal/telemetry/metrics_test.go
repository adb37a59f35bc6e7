package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveResult(t *testing.T) {
	m := New()
	res, err := analyzer.NewEngine().Compute([]model.Quote{
		{Symbol: "A", Sector: "X", DailyChangePct: 1.0, MarketCap: 100.0},
		{Symbol: "B", Sector: "X", DailyChangePct: -1.0, MarketCap: 50.0},
	})
	require.NoError(t, err)

	m.ObserveFetch(2, 1)
	m.ObserveResult(res, 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.signals.WithLabelValues("Unknown")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.signals.WithLabelValues("Buy")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.breadth))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.totalMarketCap))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.symbols.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.issues.WithLabelValues(string(analyzer.IssueMissingHistory))))
}

func TestObserveFailureAndHandler(t *testing.T) {
	m := New()
	m.ObserveFailure(time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("failure")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `sectorpulse_cycles_total{outcome="failure"} 1`)
}
