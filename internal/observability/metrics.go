// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Upstream metrics
	UpstreamCalls   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	UpstreamCredits *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec

	// Report metrics
	ReportsTotal     *prometheus.CounterVec
	ReportDuration   prometheus.Histogram
	HoldersPerReport prometheus.Histogram
	SourceDegraded   *prometheus.CounterVec
	HealthGrades     *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "holder_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Total number of external calls by service, endpoint and status",
		}, []string{"service", "endpoint", "status"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "External call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 8, 10, 15},
		}, []string{"service", "endpoint"}),
		UpstreamCredits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "credits_total",
			Help:      "Provider credits consumed by service",
		}, []string{"service"}),
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "cache_hits_total",
			Help:      "Upstream responses served from cache",
		}, []string{"service"}),

		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generated_total",
			Help:      "Total number of report invocations by outcome",
		}, []string{"outcome"}),
		ReportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "duration_seconds",
			Help:      "Report generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 60},
		}),
		HoldersPerReport: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "holders",
			Help:      "Number of holder accounts per report",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		SourceDegraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "source_degraded_total",
			Help:      "Optional sources that degraded to empty results",
		}, []string{"source"}),
		HealthGrades: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "health_grades_total",
			Help:      "Health grades assigned",
		}, []string{"grade"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a /metrics handler serving the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordUpstreamCall records one external call attempt.
func (m *Metrics) RecordUpstreamCall(service, endpoint, status string, latency time.Duration, credits int, cached bool) {
	if m == nil {
		return
	}
	m.UpstreamCalls.WithLabelValues(service, endpoint, status).Inc()
	m.UpstreamLatency.WithLabelValues(service, endpoint).Observe(latency.Seconds())
	if credits > 0 {
		m.UpstreamCredits.WithLabelValues(service).Add(float64(credits))
	}
	if cached {
		m.CacheHits.WithLabelValues(service).Inc()
	}
}

// RecordReport records a finished report invocation.
func (m *Metrics) RecordReport(outcome string, duration time.Duration, holders int, grade string) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(outcome).Inc()
	m.ReportDuration.Observe(duration.Seconds())
	if holders > 0 {
		m.HoldersPerReport.Observe(float64(holders))
	}
	if grade != "" {
		m.HealthGrades.WithLabelValues(grade).Inc()
	}
}

// RecordSourceDegraded increments the degraded counter for an optional source.
func (m *Metrics) RecordSourceDegraded(source string) {
	if m == nil {
		return
	}
	m.SourceDegraded.WithLabelValues(source).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
