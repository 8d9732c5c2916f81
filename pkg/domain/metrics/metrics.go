// Package metrics defines how route resolutions are measured.
package metrics

import (
	"fmt"

	"github.com/damianoneill/go-routable/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_metrics.go -package=mocks github.com/damianoneill/go-routable/pkg/domain/metrics Collector,Factory

// Outcome classifies how a single resolution ended.
type Outcome string

const (
	// OutcomeResolved means a template matched and its callback returned a result.
	OutcomeResolved Outcome = "resolved"

	// OutcomeNoCallback means a template matched but carried no callback.
	OutcomeNoCallback Outcome = "no_callback"

	// OutcomeNotFound means no template matched.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeInvalidTemplate means a malformed template was exercised.
	OutcomeInvalidTemplate Outcome = "invalid_template"

	// OutcomeCallbackError means the matched callback returned an error.
	OutcomeCallbackError Outcome = "callback_error"
)

// UnmatchedTemplate is the template label recorded when nothing matched.
const UnmatchedTemplate = "<unmatched>"

// Collector records resolver activity.
type Collector interface {
	// CollectResolution records one Resolve call. duration is in seconds.
	CollectResolution(template string, outcome Outcome, cacheHit bool, duration float64)

	// SetCacheSize reports the number of memoized paths.
	SetCacheSize(size int)

	// Close unregisters the collector.
	Close() error
}

// Options configures a metrics collector.
type Options struct {
	// ServiceName identifies the service in the metrics
	ServiceName string

	// Buckets defines histogram buckets for resolution latency.
	// If empty, defaults suited to sub-millisecond work are used.
	Buckets []float64

	// Labels are constant labels added to all metrics
	Labels map[string]string

	// Namespace prefixes every metric name, e.g. namespace_route_resolutions_total
	Namespace string
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// DefaultOptions returns the default metrics options
func DefaultOptions() Options {
	return Options{
		ServiceName: "unknown",
	}
}

// WithServiceName sets the service label.
func WithServiceName(name string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ServiceName = name
		return nil
	})
}

// WithBuckets sets custom latency buckets. They must be strictly increasing.
func WithBuckets(buckets []float64) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				return fmt.Errorf("buckets must be in increasing order: %v", buckets)
			}
		}
		o.Buckets = buckets
		return nil
	})
}

// WithLabels sets constant labels for all metrics from this collector.
func WithLabels(labels map[string]string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Labels = labels
		return nil
	})
}

// WithNamespace sets the metric name prefix.
func WithNamespace(namespace string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Namespace = namespace
		return nil
	})
}

// Factory creates new metrics collector instances
type Factory interface {
	NewCollector(opts ...Option) (Collector, error)
}
