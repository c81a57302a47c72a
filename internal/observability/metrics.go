package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// Metrics exposes request and SLA gauges on a dedicated Prometheus registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	ticketsByStatus *prometheus.GaugeVec
	compliance      prometheus.Gauge
	lastEvaluation  prometheus.Gauge
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		ticketsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sla_open_tickets",
			Help: "Open tickets by SLA status.",
		}, []string{"status"}),
		compliance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sla_compliance_rate",
			Help: "Percent of open tickets within their resolution budget.",
		}),
		lastEvaluation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sla_last_evaluation_timestamp_seconds",
			Help: "Unix time of the last background SLA evaluation.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.errors,
		m.ticketsByStatus,
		m.compliance,
		m.lastEvaluation,
		prometheus.NewGoCollector(),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordSLA publishes the status distribution of the last evaluation.
func (m *Metrics) RecordSLA(agg sla.AggregateMetrics, at time.Time) {
	if m == nil {
		return
	}
	for _, status := range sla.Statuses {
		m.ticketsByStatus.WithLabelValues(string(status)).Set(float64(agg.ByStatus[status]))
	}
	m.compliance.Set(agg.ComplianceRate)
	m.lastEvaluation.Set(float64(at.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
