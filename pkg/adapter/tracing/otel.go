// Package tracing provides an OpenTelemetry implementation of the tracing
// domain interfaces.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/damianoneill/go-routable/pkg/domain/options"
	"github.com/damianoneill/go-routable/pkg/domain/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

// Provider implements the domain Provider interface using OpenTelemetry.
// A disabled Provider hands out no-op tracers.
type Provider struct {
	provider *sdktrace.TracerProvider
	enabled  bool
}

// Factory creates OpenTelemetry-based Provider instances
type Factory struct{}

// NewFactory creates a new OpenTelemetry factory
func NewFactory() *Factory {
	return &Factory{}
}

var _ tracing.Factory = (*Factory)(nil)

func defaultOptions() tracing.Options {
	return tracing.Options{
		ExporterType: tracing.HTTPExporter,
		SamplingRate: 1.0,
	}
}

// NewProvider implements tracing.Factory. The OTLP exporter is chosen by the
// configured ExporterType; NoopExporter yields a disabled provider.
func (f *Factory) NewProvider(opts ...tracing.Option) (tracing.Provider, error) {
	o, err := f.options(opts)
	if err != nil {
		return nil, err
	}
	if o.ExporterType == tracing.NoopExporter {
		return &Provider{}, nil
	}

	exporter, err := newExporter(context.Background(), o)
	if err != nil {
		return nil, fmt.Errorf("creating exporter: %w", err)
	}
	return f.newProvider(o, sdktrace.WithBatcher(exporter))
}

// NewProviderWithExporter builds an enabled provider around exporter with
// synchronous export, ignoring the configured ExporterType. Tests pass a
// tracetest.InMemoryExporter.
func (f *Factory) NewProviderWithExporter(exporter sdktrace.SpanExporter, opts ...tracing.Option) (*Provider, error) {
	if exporter == nil {
		return nil, errors.New("exporter is required")
	}
	o, err := f.options(opts)
	if err != nil {
		return nil, err
	}
	return f.newProvider(o, sdktrace.WithSyncer(exporter))
}

func (f *Factory) options(opts []tracing.Option) (tracing.Options, error) {
	o, err := options.New(defaultOptions(), opts...)
	if err != nil {
		return o, fmt.Errorf("applying option: %w", err)
	}
	if o.ServiceName == "" {
		return o, errors.New("service name is required")
	}
	return o, nil
}

func (f *Factory) newProvider(o tracing.Options, export sdktrace.TracerProviderOption) (*Provider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(o.ServiceName),
			semconv.ServiceVersion(o.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(o.SamplingRate))),
	)

	// otelhttp and other instrumentation read the globals.
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator(o.PropagatorTypes))

	return &Provider{provider: tp, enabled: true}, nil
}

// HTTPMiddleware creates server spans named after operation.
func (f *Factory) HTTPMiddleware(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}

// Tracer implements tracing.Provider.
func (p *Provider) Tracer(name string) trace.Tracer {
	if !p.enabled || p.provider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.provider.Tracer(name)
}

// Shutdown flushes and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// IsEnabled implements tracing.Provider.
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

func newExporter(ctx context.Context, o tracing.Options) (sdktrace.SpanExporter, error) {
	switch o.ExporterType {
	case tracing.HTTPExporter:
		var opts []otlptracehttp.Option
		if o.CollectorEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(o.CollectorEndpoint))
		}
		if o.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(o.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(o.Headers))
		}
		return otlptracehttp.New(ctx, opts...)

	case tracing.GRPCExporter:
		var opts []otlptracegrpc.Option
		if o.CollectorEndpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(o.CollectorEndpoint))
		}
		if o.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(o.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(o.Headers))
		}
		return otlptracegrpc.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", o.ExporterType)
	}
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func propagator(types []string) propagation.TextMapPropagator {
	if len(types) == 0 {
		types = []string{tracing.PropagatorTraceContext, tracing.PropagatorBaggage}
	}

	props := make([]propagation.TextMapPropagator, 0, len(types))
	for _, t := range types {
		switch t {
		case tracing.PropagatorTraceContext:
			props = append(props, propagation.TraceContext{})
		case tracing.PropagatorBaggage:
			props = append(props, propagation.Baggage{})
		}
	}
	return propagation.NewCompositeTextMapPropagator(props...)
}
