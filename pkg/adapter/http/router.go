// Package http provides a chi-based implementation of the HTTP host for the
// routing service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	"github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/options"
)

// Router implements domainhttp.Router using chi.
type Router struct {
	chi.Router
	opts      domainhttp.RouterOptions
	metrics   *requestMetrics
	noLogging *pathMatcher
	noTracing *pathMatcher
}

// Factory creates chi-based routers whose metrics go to one registry.
type Factory struct {
	reg      prometheus.Registerer
	gatherer prometheus.Gatherer
}

var _ domainhttp.Factory = (*Factory)(nil)

// NewFactory uses the Prometheus default registry.
func NewFactory() *Factory {
	return &Factory{reg: prometheus.DefaultRegisterer, gatherer: prometheus.DefaultGatherer}
}

// NewFactoryWithRegistry registers request metrics with reg and serves reg on
// /metrics.
func NewFactoryWithRegistry(reg *prometheus.Registry) *Factory {
	return &Factory{reg: reg, gatherer: reg}
}

// NewRouter implements domainhttp.Factory.
func (f *Factory) NewRouter(opts ...domainhttp.Option) (domainhttp.Router, error) {
	r, err := f.New(opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// New is NewRouter returning the concrete type.
func (f *Factory) New(opts ...domainhttp.Option) (*Router, error) {
	o, err := options.New(domainhttp.DefaultOptions(), opts...)
	if err != nil {
		return nil, fmt.Errorf("applying router option: %w", err)
	}
	if o.ServiceName == "" {
		return nil, errors.New("service name is required")
	}
	if o.ProbeHandlers == nil {
		o.ProbeHandlers = domainhttp.DefaultProbeHandlers()
	}

	r := &Router{
		Router:    chi.NewRouter(),
		opts:      o,
		noLogging: newMatcher(o.ExcludeFromLogging),
		noTracing: newMatcher(o.ExcludeFromTracing),
	}
	if o.EnableMetrics {
		m, err := newRequestMetrics(f.reg, o.ServiceName, o.ServiceVersion)
		if err != nil {
			return nil, fmt.Errorf("registering request metrics: %w", err)
		}
		r.metrics = m
	}

	r.configureMiddleware()
	r.configureRoutes(f.gatherer)
	return r, nil
}

// Middleware order: request id, real ip, recoverer, timeout, tracing,
// logging, metrics.
func (r *Router) configureMiddleware() {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(r.opts.RequestTimeout),
	)
	if p := r.opts.TracingProvider; p != nil && p.IsEnabled() {
		r.Use(r.tracingMiddleware())
	}
	if r.opts.Logger != nil {
		r.Use(r.loggingMiddleware())
	}
	if r.metrics != nil {
		r.Use(r.metricsMiddleware())
	}
}

func (r *Router) configureRoutes(gatherer prometheus.Gatherer) {
	internal := chi.NewRouter()
	internal.Get("/health", r.probeHandler(r.opts.ProbeHandlers.LivenessCheck))
	internal.Get("/ready", r.probeHandler(r.opts.ProbeHandlers.ReadinessCheck))
	internal.Get("/startup", r.probeHandler(r.opts.ProbeHandlers.StartupCheck))
	r.Mount("/internal", internal)

	if r.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func (r *Router) probeHandler(check domainhttp.ProbeCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resp := domainhttp.ProbeResponse{Status: domainhttp.StatusOK}
		if check != nil {
			resp = check(req.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if !resp.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil && r.opts.Logger != nil {
			r.opts.Logger.ErrorWith("Failed to write probe response", logging.Fields{
				"error": err.Error(),
			})
		}
	}
}

func (r *Router) loggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.noLogging.Matches(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			defer func() {
				r.opts.Logger.WithContext(req.Context()).InfoWith("HTTP Request", logging.Fields{
					"method":     req.Method,
					"path":       req.URL.Path,
					"status":     ww.Status(),
					"duration":   time.Since(start).String(),
					"size":       ww.BytesWritten(),
					"request_id": middleware.GetReqID(req.Context()),
				})
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

func (r *Router) tracingMiddleware() func(http.Handler) http.Handler {
	service := r.opts.ServiceName
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithFilter(func(req *http.Request) bool {
				return !r.noTracing.Matches(req.URL.Path)
			}),
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return fmt.Sprintf("%s.http %s %s", service, req.Method, req.URL.Path)
			}),
		)
	}
}

func (r *Router) metricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.noLogging.Matches(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)

			r.metrics.observe(req.Method, routePattern(req), ww.Status(), time.Since(start).Seconds())
		})
	}
}

// routePattern keeps metric cardinality bounded by preferring the chi
// pattern ("/resolve/cache") over the raw path.
func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return req.URL.Path
}

// Close unregisters the request metrics.
func (r *Router) Close(_ context.Context) error {
	if r.metrics != nil {
		r.metrics.unregister()
	}
	return nil
}
