package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// requestMetrics records per-request counters and latency for the router.
type requestMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	reg      prometheus.Registerer
}

func newRequestMetrics(reg prometheus.Registerer, service, version string) (*requestMetrics, error) {
	labels := prometheus.Labels{"service": service, "version": version}
	names := []string{"method", "path", "status"}

	m := &requestMetrics{
		reg: reg,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, names),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, names),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_errors_total",
			Help:        "Total number of HTTP responses with status 400 or above",
			ConstLabels: labels,
		}, names),
	}

	var err error
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.errors, err = register(reg, m.errors); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an identical collector registered by an
// earlier router on the same registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *requestMetrics) observe(method, path string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.duration.WithLabelValues(method, path, code).Observe(seconds)
	m.requests.WithLabelValues(method, path, code).Inc()
	if status >= http.StatusBadRequest {
		m.errors.WithLabelValues(method, path, code).Inc()
	}
}

func (m *requestMetrics) unregister() {
	m.reg.Unregister(m.duration)
	m.reg.Unregister(m.requests)
	m.reg.Unregister(m.errors)
}
