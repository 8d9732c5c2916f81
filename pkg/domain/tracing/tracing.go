// Package tracing defines the tracing interfaces and options used to
// instrument route resolution with OpenTelemetry.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/damianoneill/go-routable/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_tracing.go -package=mocks github.com/damianoneill/go-routable/pkg/domain/tracing Provider,Factory

// Span attribute keys recorded on resolution spans.
const (
	AttrRoutePath     = attribute.Key("route.path")
	AttrRouteTemplate = attribute.Key("route.template")
	AttrRouteOutcome  = attribute.Key("route.outcome")
	AttrRouteCacheHit = attribute.Key("route.cache_hit")
)

// Provider manages tracer creation and the export lifecycle.
type Provider interface {
	// Tracer returns a named tracer. Disabled providers return a no-op tracer.
	Tracer(name string) trace.Tracer

	// Shutdown flushes pending spans and stops the provider.
	Shutdown(ctx context.Context) error

	// IsEnabled reports whether spans are exported.
	IsEnabled() bool
}

// ExporterType defines the type of OpenTelemetry exporter to use.
type ExporterType string

const (
	// HTTPExporter uses OTLP over HTTP
	HTTPExporter ExporterType = "http"

	// GRPCExporter uses OTLP over gRPC
	GRPCExporter ExporterType = "grpc"

	// NoopExporter disables export entirely
	NoopExporter ExporterType = "noop"
)

// Supported propagation formats.
const (
	PropagatorTraceContext = "tracecontext"
	PropagatorBaggage      = "baggage"
)

// Options configures the tracer provider behavior.
type Options struct {
	ServiceName    string
	ServiceVersion string

	// CollectorEndpoint is the host:port of the OpenTelemetry collector
	CollectorEndpoint string

	// ExporterType defaults to HTTPExporter
	ExporterType ExporterType

	// Headers are added to OTLP requests (e.g. for authentication)
	Headers map[string]string

	// Insecure disables TLS for the exporter connection
	Insecure bool

	// PropagatorTypes defaults to tracecontext and baggage
	PropagatorTypes []string

	// SamplingRate is the probability of sampling a trace (0.0-1.0)
	SamplingRate float64
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// Factory creates configured Provider instances
type Factory interface {
	NewProvider(opts ...Option) (Provider, error)

	// HTTPMiddleware wraps handlers with server spans named after operation
	HTTPMiddleware(operation string) func(http.Handler) http.Handler
}

func WithServiceName(name string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ServiceName = name
		return nil
	})
}

func WithServiceVersion(version string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ServiceVersion = version
		return nil
	})
}

func WithCollectorEndpoint(endpoint string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.CollectorEndpoint = endpoint
		return nil
	})
}

func WithExporterType(exporterType ExporterType) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		switch exporterType {
		case HTTPExporter, GRPCExporter, NoopExporter:
			o.ExporterType = exporterType
			return nil
		default:
			return fmt.Errorf("unsupported exporter type: %s", exporterType)
		}
	})
}

func WithHeaders(headers map[string]string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Headers = headers
		return nil
	})
}

func WithInsecure(insecure bool) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Insecure = insecure
		return nil
	})
}

// WithPropagatorTypes sets the context propagation formats.
func WithPropagatorTypes(types []string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		for _, t := range types {
			if t != PropagatorTraceContext && t != PropagatorBaggage {
				return fmt.Errorf("unsupported propagator: %s", t)
			}
		}
		o.PropagatorTypes = types
		return nil
	})
}

// WithSamplingRate sets the trace sampling probability, between 0.0 and 1.0.
func WithSamplingRate(rate float64) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if rate < 0.0 || rate > 1.0 {
			return fmt.Errorf("sampling rate must be between 0.0 and 1.0")
		}
		o.SamplingRate = rate
		return nil
	})
}

// WithDefaultPropagators configures W3C trace context and baggage.
func WithDefaultPropagators() Option {
	return WithPropagatorTypes([]string{
		PropagatorTraceContext,
		PropagatorBaggage,
	})
}
