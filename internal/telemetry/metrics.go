// Package telemetry exposes fetch-cycle metrics in Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/strategy"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records fetch-cycle outcomes on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	symbols        *prometheus.GaugeVec
	signals        *prometheus.GaugeVec
	issues         *prometheus.CounterVec
	breadth        prometheus.Gauge
	totalMarketCap prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// New creates the metric set and registers it, plus the Go runtime
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_cycles_total",
				Help: "Fetch cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sectorpulse_cycle_duration_seconds",
			Help:    "Duration of a full fetch cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		symbols: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorpulse_symbols",
				Help: "Symbols in the last cycle by fetch status",
			},
			[]string{"status"},
		),
		signals: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorpulse_signals",
				Help: "Symbols per crossover signal in the last analysis",
			},
			[]string{"signal"},
		),
		issues: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_issues_total",
				Help: "Per-symbol analysis issues by kind",
			},
			[]string{"kind"},
		),
		breadth: f.NewGauge(prometheus.GaugeOpts{
			Name: "sectorpulse_market_breadth",
			Help: "Fraction of symbols with a positive daily change",
		}),
		totalMarketCap: f.NewGauge(prometheus.GaugeOpts{
			Name: "sectorpulse_total_market_cap_crores",
			Help: "Summed market cap of the basket in crores",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "sectorpulse_last_success_timestamp_seconds",
			Help: "Unix time of the last successful cycle",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFetch records how many symbols were fetched and how many failed.
func (m *Metrics) ObserveFetch(fetched, failed int) {
	m.symbols.WithLabelValues("fetched").Set(float64(fetched))
	m.symbols.WithLabelValues("failed").Set(float64(failed))
}

// ObserveResult records a successful cycle's analysis.
func (m *Metrics) ObserveResult(res *analyzer.Result, took time.Duration) {
	m.cycles.WithLabelValues("success").Inc()
	m.cycleDuration.Observe(took.Seconds())
	for sig, n := range strategy.CountSignals(res.Records) {
		m.signals.WithLabelValues(string(sig)).Set(float64(n))
	}
	for _, is := range res.Issues {
		m.issues.WithLabelValues(string(is.Kind)).Inc()
	}
	m.breadth.Set(res.Snapshot.MarketBreadth)
	m.totalMarketCap.Set(res.Snapshot.TotalMarketCap)
	m.lastSuccess.Set(float64(res.Snapshot.AnalysisTimestamp.Unix()))
}

// ObserveFailure records a cycle that produced no analysis.
func (m *Metrics) ObserveFailure(took time.Duration) {
	m.cycles.WithLabelValues("failure").Inc()
	m.cycleDuration.Observe(took.Seconds())
}
