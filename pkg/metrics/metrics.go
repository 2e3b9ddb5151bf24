// Package metrics defines the Prometheus metric collectors used across the
// translation platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	TranslationsTotal    *prometheus.CounterVec
	TranslateLatency     *prometheus.HistogramVec
	CellsEnumerated      prometheus.Histogram
	ParsesRecorded       prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	PhraseTableEntries   prometheus.Gauge
	RewriteLookupsTotal  *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		TranslationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translations_total",
				Help: "Total translation requests by result type (hit, miss, zero_result, error).",
			},
			[]string{"result_type"},
		),
		TranslateLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translate_latency_seconds",
				Help:    "End-to-end translation latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"cache_status"},
		),
		CellsEnumerated: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parser_cells_enumerated",
				Help:    "Number of derivation cells visited per traversal.",
				Buckets: prometheus.ExponentialBuckets(10, 4, 10),
			},
		),
		ParsesRecorded: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parser_parses_recorded",
				Help:    "Number of complete command parses recorded per traversal.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of translation cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of translation cache misses.",
			},
		),
		PhraseTableEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "phrase_table_entries",
				Help: "Number of snippet entries in the loaded phrase table.",
			},
		),
		RewriteLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewrite_lookups_total",
				Help: "Total rewrite-store lookups by outcome (ok, error, open).",
			},
			[]string{"outcome"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.TranslationsTotal,
		m.TranslateLatency,
		m.CellsEnumerated,
		m.ParsesRecorded,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PhraseTableEntries,
		m.RewriteLookupsTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
