// Package metrics defines the Prometheus collectors for the querier and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the querier.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	QueriesTotal         *prometheus.CounterVec
	QueryLatency         prometheus.Histogram
	QueryResultsCount    prometheus.Histogram
	GroupsDiscarded      prometheus.Counter
	IndexLookups         prometheus.Counter
	MetadataMisses       prometheus.Counter
	IndexTerms           prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
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
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "query_evaluations_total",
				Help: "Total query evaluations by outcome (hit, zero_result, invalid, error).",
			},
			[]string{"outcome"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_latency_seconds",
				Help:    "Query evaluation latency in seconds, metadata resolution included.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "query_results_count",
				Help:    "Number of documents printed per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		GroupsDiscarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_groups_discarded_total",
				Help: "AND-groups dropped because one of their words was not indexed.",
			},
		),
		IndexLookups: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_lookups_total",
				Help: "Total word lookups against the inverted index.",
			},
		),
		MetadataMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "metadata_misses_total",
				Help: "Ranked documents skipped because the metadata store had no URL.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_terms",
				Help: "Number of distinct words in the loaded index.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.GroupsDiscarded,
		m.IndexLookups,
		m.MetadataMisses,
		m.IndexTerms,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
