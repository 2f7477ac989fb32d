package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invariant kinds reported by the audit worker.
const (
	KindCapacity = "capacity"
)

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	bookingAttempts     *prometheus.CounterVec
	bookingDuration     prometheus.Histogram
	invariantViolations *prometheus.GaugeVec

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	httpActiveConnections prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		bookingAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_booking_attempts_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		bookingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "clinic_booking_duration_seconds",
				Help:    "Time spent in a booking attempt, locks included",
				Buckets: prometheus.DefBuckets,
			},
		),
		invariantViolations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clinic_invariant_violations",
				Help: "Rows breaking a booking invariant at the last audit",
			},
			[]string{"kind"},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
		httpActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.bookingAttempts,
		m.bookingDuration,
		m.invariantViolations,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpActiveConnections,
	)
	return m
}

// ObserveBooking implements clinic.Observer.
func (m *Metrics) ObserveBooking(outcome string, took time.Duration) {
	m.bookingAttempts.WithLabelValues(outcome).Inc()
	m.bookingDuration.Observe(took.Seconds())
}

// SetInvariantViolations records how many rows broke kind at the last audit.
func (m *Metrics) SetInvariantViolations(kind string, n int) {
	m.invariantViolations.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
