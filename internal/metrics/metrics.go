// Package metrics provides Prometheus metrics for the analytics service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fifa"

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// tests and multiple routers never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// Dataset metrics
	DatasetLoadsTotal   *prometheus.CounterVec
	DatasetLoadDuration prometheus.Histogram
	DatasetRows         prometheus.Gauge

	// Query metrics
	FiltersTotal     *prometheus.CounterVec
	FilterMatches    prometheus.Histogram
	PredictionsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.DatasetLoadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Total number of dataset loads by outcome",
		},
		[]string{"outcome"},
	)

	m.DatasetLoadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of dataset load and clean in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.DatasetRows = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the most recently loaded dataset",
		},
	)

	m.FiltersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filters_total",
			Help:      "Total number of filter applications by outcome",
		},
		[]string{"outcome"},
	)

	m.FilterMatches = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_matches",
			Help:      "Rows matched per filter application",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	m.PredictionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of predictions by outcome",
		},
		[]string{"outcome"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLoad records a dataset load attempt.
func (m *Metrics) RecordLoad(outcome string, duration time.Duration, rows int) {
	m.DatasetLoadsTotal.WithLabelValues(outcome).Inc()
	m.DatasetLoadDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		m.DatasetRows.Set(float64(rows))
	}
}

// RecordFilter records one filter application.
func (m *Metrics) RecordFilter(outcome string, matches int) {
	m.FiltersTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.FilterMatches.Observe(float64(matches))
	}
}

// RecordPrediction records one prediction attempt.
func (m *Metrics) RecordPrediction(outcome string) {
	m.PredictionsTotal.WithLabelValues(outcome).Inc()
}

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeParseError  = "parse_error"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Middleware records request counts and latencies labelled by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
