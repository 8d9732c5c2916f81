// Package metrics implements the resolution metrics collector on Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/damianoneill/go-routable/pkg/domain/metrics"
	"github.com/damianoneill/go-routable/pkg/domain/options"
)

// Resolution work is in-memory so the buckets start well below a millisecond.
var defaultBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

type prometheusCollector struct {
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheSize   prometheus.Gauge
	reg         prometheus.Registerer
	mu          sync.RWMutex
	closed      bool
}

// PrometheusFactory creates collectors registered with one Registerer.
type PrometheusFactory struct {
	reg prometheus.Registerer
}

// NewMetricsFactory returns a factory using prometheus.DefaultRegisterer.
func NewMetricsFactory() *PrometheusFactory {
	return NewMetricsFactoryWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsFactoryWithRegisterer returns a factory for a custom registry,
// typically a fresh prometheus.NewRegistry() in tests.
func NewMetricsFactoryWithRegisterer(reg prometheus.Registerer) *PrometheusFactory {
	return &PrometheusFactory{reg: reg}
}

var _ metrics.Factory = (*PrometheusFactory)(nil)

func (f *PrometheusFactory) NewCollector(opts ...metrics.Option) (metrics.Collector, error) {
	o, err := options.New(metrics.DefaultOptions(), opts...)
	if err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}
	if o.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	labels := prometheus.Labels{"service": o.ServiceName}
	for k, v := range o.Labels {
		labels[k] = v
	}
	buckets := o.Buckets
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	c := &prometheusCollector{
		reg: f.reg,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   o.Namespace,
				Subsystem:   "route",
				Name:        "resolutions_total",
				Help:        "Total number of route resolutions by template, outcome and cache hit",
				ConstLabels: labels,
			},
			[]string{"template", "outcome", "cache_hit"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   o.Namespace,
				Subsystem:   "route",
				Name:        "resolution_duration_seconds",
				Help:        "Route resolution latency in seconds, callback included",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.Namespace,
			Subsystem:   "route",
			Name:        "cache_entries",
			Help:        "Number of memoized path bindings",
			ConstLabels: labels,
		}),
	}

	registered := make([]prometheus.Collector, 0, 3)
	for _, col := range []prometheus.Collector{c.resolutions, c.duration, c.cacheSize} {
		if err := c.reg.Register(col); err != nil {
			for _, r := range registered {
				c.reg.Unregister(r)
			}
			return nil, fmt.Errorf("registering collector: %w", err)
		}
		registered = append(registered, col)
	}

	return c, nil
}

func (c *prometheusCollector) CollectResolution(template string, outcome metrics.Outcome, cacheHit bool, duration float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	c.resolutions.WithLabelValues(template, string(outcome), strconv.FormatBool(cacheHit)).Inc()
	c.duration.WithLabelValues(string(outcome)).Observe(duration)
}

func (c *prometheusCollector) SetCacheSize(size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	c.cacheSize.Set(float64(size))
}

func (c *prometheusCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.reg.Unregister(c.resolutions)
	c.reg.Unregister(c.duration)
	c.reg.Unregister(c.cacheSize)
	return nil
}
