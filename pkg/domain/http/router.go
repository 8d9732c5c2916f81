// Package http describes the HTTP host the routing service runs in: a
// chi.Router with probe endpoints and request observability.
package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/options"
	"github.com/damianoneill/go-routable/pkg/domain/tracing"
)

// Router is a chi.Router with the service endpoints already mounted.
type Router interface {
	chi.Router
}

// DefaultRequestTimeout bounds every request handled by a Router.
const DefaultRequestTimeout = 30 * time.Second

// RouterOptions configures router behavior and service capabilities.
type RouterOptions struct {
	// ServiceName identifies the service in logs, traces and metrics.
	ServiceName string

	// ServiceVersion should follow semantic versioning like "1.2.3".
	ServiceVersion string

	// Logger enables request logging when set.
	Logger logging.Logger

	// TracingProvider enables server spans when set.
	TracingProvider tracing.Provider

	// ProbeHandlers configures the /internal probe endpoints.
	ProbeHandlers *ProbeHandlers

	// EnableMetrics records request metrics and serves /metrics.
	EnableMetrics bool

	// RequestTimeout defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// ExcludeFromLogging lists path patterns that are not logged. A "*"
	// segment matches any one segment and a trailing "*" any remainder,
	// e.g. "/internal/*".
	ExcludeFromLogging []string

	// ExcludeFromTracing lists path patterns that are not traced.
	ExcludeFromTracing []string
}

// Option is a function that modifies RouterOptions
type Option = options.Option[RouterOptions]

// DefaultOptions returns options with the default probes and timeout.
func DefaultOptions() RouterOptions {
	return RouterOptions{
		ProbeHandlers:  DefaultProbeHandlers(),
		RequestTimeout: DefaultRequestTimeout,
	}
}

// WithService sets the service name and version.
func WithService(name, version string) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if name == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		o.ServiceName = name
		o.ServiceVersion = version
		return nil
	})
}

func WithLogger(logger logging.Logger) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.Logger = logger
		return nil
	})
}

func WithTracingProvider(provider tracing.Provider) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.TracingProvider = provider
		return nil
	})
}

func WithProbeHandlers(handlers *ProbeHandlers) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if handlers == nil {
			return fmt.Errorf("probe handlers cannot be nil")
		}
		o.ProbeHandlers = handlers
		return nil
	})
}

// WithMetrics toggles request metrics and the /metrics endpoint.
func WithMetrics(enabled bool) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.EnableMetrics = enabled
		return nil
	})
}

func WithRequestTimeout(d time.Duration) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %s", d)
		}
		o.RequestTimeout = d
		return nil
	})
}

// WithObservabilityExclusions sets the logging and tracing exclusions at once.
func WithObservabilityExclusions(loggingPaths, tracingPaths []string) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if err := validatePaths("logging", loggingPaths); err != nil {
			return err
		}
		if err := validatePaths("tracing", tracingPaths); err != nil {
			return err
		}
		o.ExcludeFromLogging = loggingPaths
		o.ExcludeFromTracing = tracingPaths
		return nil
	})
}

func WithLoggingExclusions(paths []string) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if err := validatePaths("logging", paths); err != nil {
			return err
		}
		o.ExcludeFromLogging = paths
		return nil
	})
}

func WithTracingExclusions(paths []string) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if err := validatePaths("tracing", paths); err != nil {
			return err
		}
		o.ExcludeFromTracing = paths
		return nil
	})
}

func validatePaths(kind string, paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path must start with /: %s", p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("duplicate %s path: %s", kind, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Factory creates new router instances with the specified options.
type Factory interface {
	NewRouter(opts ...Option) (Router, error)
}
