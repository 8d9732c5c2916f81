package route

import (
	"github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/metrics"
	"github.com/damianoneill/go-routable/pkg/domain/options"
	"github.com/damianoneill/go-routable/pkg/domain/tracing"
)

// ResolverOptions configures a Resolver. Every field is optional.
type ResolverOptions struct {
	// Logger receives resolution diagnostics. Defaults to logging.Nop().
	Logger logging.Logger

	// MetricsCollector records one observation per Resolve call.
	MetricsCollector metrics.Collector

	// TracingProvider supplies the tracer for route.resolve spans.
	TracingProvider tracing.Provider

	// DisableCache makes every call match from scratch.
	DisableCache bool

	// GlobalParams seeds the global parameters.
	GlobalParams map[string]any
}

// Option is a function that modifies ResolverOptions
type Option = options.Option[ResolverOptions]

// WithLogger sets the resolver logger.
func WithLogger(logger logging.Logger) Option {
	return options.OptionFunc[ResolverOptions](func(o *ResolverOptions) error {
		o.Logger = logger
		return nil
	})
}

// WithMetricsCollector sets the collector resolutions are reported to.
func WithMetricsCollector(collector metrics.Collector) Option {
	return options.OptionFunc[ResolverOptions](func(o *ResolverOptions) error {
		o.MetricsCollector = collector
		return nil
	})
}

// WithTracingProvider enables a span per resolution.
func WithTracingProvider(provider tracing.Provider) Option {
	return options.OptionFunc[ResolverOptions](func(o *ResolverOptions) error {
		o.TracingProvider = provider
		return nil
	})
}

// WithCacheDisabled turns memoization off.
func WithCacheDisabled() Option {
	return options.OptionFunc[ResolverOptions](func(o *ResolverOptions) error {
		o.DisableCache = true
		return nil
	})
}

// WithGlobalParams adds initial global parameters; later calls win per key.
func WithGlobalParams(params map[string]any) Option {
	return options.OptionFunc[ResolverOptions](func(o *ResolverOptions) error {
		if o.GlobalParams == nil {
			o.GlobalParams = make(map[string]any, len(params))
		}
		for k, v := range params {
			o.GlobalParams[k] = v
		}
		return nil
	})
}
