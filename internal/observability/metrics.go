// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "sol_memebot"

// Metrics holds the simulation's Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ingestion metrics
	ListingsFetched    prometheus.Counter
	ObservationsQueued prometheus.Counter
	ProviderErrors     *prometheus.CounterVec
	ProviderLatency    *prometheus.HistogramVec

	// Decision metrics
	ScoreDistribution prometheus.Histogram
	BuysTotal         prometheus.Counter
	SellsTotal        *prometheus.CounterVec
	SkippedBuys       *prometheus.CounterVec

	// Portfolio metrics
	OpenPositions prometheus.Gauge
	CapitalSOL    prometheus.Gauge

	// Ledger metrics
	LedgerWriteErrors *prometheus.CounterVec

	// Health metrics
	LastCompletedRun prometheus.Gauge
}

// NewMetrics registers all metrics on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ListingsFetched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "listings_fetched_total",
			Help:      "Total number of raw listings returned by the listing source",
		}),
		ObservationsQueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "observations_queued_total",
			Help:      "Total number of normalized observations buffered for decision",
		}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "provider_errors_total",
			Help:      "Total number of failed provider calls by provider and operation",
		}, []string{"provider", "operation"}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "provider_call_seconds",
			Help:      "Provider call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		ScoreDistribution: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "score",
			Help:      "Distribution of computed token scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		BuysTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "buys_total",
			Help:      "Total number of simulated buys",
		}),
		SellsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "sells_total",
			Help:      "Total number of simulated sells by exit reason",
		}, []string{"reason"}),
		SkippedBuys: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "skipped_buys_total",
			Help:      "Approved buys that were not executed, by cause",
		}, []string{"cause"}),

		OpenPositions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "open_positions",
			Help:      "Number of currently open positions",
		}),
		CapitalSOL: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "available_capital_sol",
			Help:      "Available simulated capital in SOL",
		}),

		LedgerWriteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "write_errors_total",
			Help:      "Total number of failed ledger writes by operation",
		}, []string{"operation"}),

		LastCompletedRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_completed_run_timestamp",
			Help:      "Unix timestamp of the last completed simulation run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint of g.
// A nil g serves the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordListings records a listing fetch.
func (m *Metrics) RecordListings(n int) {
	if m == nil {
		return
	}
	m.ListingsFetched.Add(float64(n))
}

// RecordQueued records an observation appended to the decision buffer.
func (m *Metrics) RecordQueued() {
	if m == nil {
		return
	}
	m.ObservationsQueued.Inc()
}

// RecordProviderCall records the latency and outcome of a provider call.
func (m *Metrics) RecordProviderCall(provider, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.ProviderLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider, operation).Inc()
	}
}

// RecordScore records a computed score.
func (m *Metrics) RecordScore(score float64) {
	if m == nil {
		return
	}
	m.ScoreDistribution.Observe(score)
}

// RecordBuy records an executed buy.
func (m *Metrics) RecordBuy() {
	if m == nil {
		return
	}
	m.BuysTotal.Inc()
}

// RecordSell records a closed position.
func (m *Metrics) RecordSell(reason string) {
	if m == nil {
		return
	}
	m.SellsTotal.WithLabelValues(reason).Inc()
}

// RecordSkippedBuy records an approved buy that could not be executed.
func (m *Metrics) RecordSkippedBuy(cause string) {
	if m == nil {
		return
	}
	m.SkippedBuys.WithLabelValues(cause).Inc()
}

// UpdatePortfolio sets the portfolio gauges.
func (m *Metrics) UpdatePortfolio(openPositions int, capitalSOL float64) {
	if m == nil {
		return
	}
	m.OpenPositions.Set(float64(openPositions))
	m.CapitalSOL.Set(capitalSOL)
}

// RecordLedgerError records a failed ledger write.
func (m *Metrics) RecordLedgerError(operation string) {
	if m == nil {
		return
	}
	m.LedgerWriteErrors.WithLabelValues(operation).Inc()
}

// RecordRunCompleted stamps the completion time of a run.
func (m *Metrics) RecordRunCompleted(unixSeconds int64) {
	if m == nil {
		return
	}
	m.LastCompletedRun.Set(float64(unixSeconds))
}
