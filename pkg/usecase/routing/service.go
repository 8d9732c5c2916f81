// Package routing hosts a route table behind HTTP: clients post a URL and get
// back the target it resolves to, its parameters and the matched template.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	domainlog "github.com/damianoneill/go-routable/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-routable/pkg/domain/metrics"
	domaintracing "github.com/damianoneill/go-routable/pkg/domain/tracing"
)

// table is the resolver together with the config it was built from. It is
// swapped as a whole on reload.
type table struct {
	resolver *Resolver
	config   RoutingConfig
}

// Service serves one route table.
type Service struct {
	logger    domainlog.LeveledLogger
	config    domainconfig.Store
	router    domainhttp.Router
	tracer    domaintracing.Provider
	collector domainmetrics.Collector
	state     atomic.Pointer[table]
	reloadMu  sync.Mutex
	startTime time.Time
	server    *http.Server
	deps      Dependencies
	hooks     *ServerHooks
	opts      Options
}

// NewService wires the service from its dependencies and loads the route
// table.
func NewService(opts Options, deps Dependencies, hooks *ServerHooks) (*Service, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if deps.ConfigFactory == nil || deps.LoggerFactory == nil || deps.RouterFactory == nil {
		return nil, errors.New("config, logger and router factories are required")
	}

	svc := &Service{
		deps:      deps,
		startTime: time.Now(),
		hooks:     hooks,
		opts:      opts,
	}

	for _, step := range []func(Options) error{
		svc.initConfig,
		svc.initLogger,
		svc.initTracing,
		svc.initMetrics,
		func(Options) error { return svc.initResolver() },
		svc.initRouter,
	} {
		if err := step(opts); err != nil {
			return nil, err
		}
	}
	svc.initWatch(opts)

	return svc, nil
}

// Reload re-reads the route table and swaps in a new resolver. In-flight
// resolutions finish on the old one. Runtime global params are reset to the
// configured ones.
func (s *Service) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if err := s.config.ReadConfig(); err != nil && s.opts.ConfigFile != "" {
		return fmt.Errorf("reloading config: %w", err)
	}
	return s.initResolver()
}

// Resolver returns the active resolver.
func (s *Service) Resolver() *Resolver {
	return s.state.Load().resolver
}

// LoadServerConfig loads server configuration from the config store
func (s *Service) LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	var ok bool

	cfg.Port, ok = s.config.GetInt("server.http.port")
	if !ok {
		return cfg, fmt.Errorf("server port not configured")
	}
	if cfg.ReadTimeout, ok = s.config.GetDuration("server.http.read_timeout"); !ok {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout, ok = s.config.GetDuration("server.http.write_timeout"); !ok {
		cfg.WriteTimeout = 15 * time.Second
	}
	return cfg, nil
}

// Start listens until Shutdown is called.
func (s *Service) Start() error {
	cfg, err := s.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.logger.InfoWith("Starting server", domainlog.Fields{
		"address": s.server.Addr,
		"routes":  len(s.Resolver().Templates()),
	})

	listenAndServe := s.server.ListenAndServe
	if s.hooks != nil && s.hooks.ListenAndServe != nil {
		listenAndServe = s.hooks.ListenAndServe
	}
	if err := listenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the listener, flushes traces and unregisters metrics.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	var errs []error
	if s.server != nil {
		shutdown := s.server.Shutdown
		if s.hooks != nil && s.hooks.Shutdown != nil {
			shutdown = s.hooks.Shutdown
		}
		if err := shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if c, ok := s.router.(interface{ Close(context.Context) error }); ok {
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("router close: %w", err))
		}
	}
	if s.collector != nil {
		if err := s.collector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics close: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.ErrorWith("Shutdown error", domainlog.Fields{"error": err.Error()})
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

// Router returns the service's router
func (s *Service) Router() domainhttp.Router {
	return s.router
}

// Config returns the service's configuration store
func (s *Service) Config() domainconfig.Store {
	return s.config
}

// Logger returns the service's logger
func (s *Service) Logger() domainlog.Logger {
	return s.logger
}

func validateOptions(opts *Options) error {
	if opts.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = opts.ServiceName
	}
	if opts.LogLevel == "" {
		opts.LogLevel = domainlog.InfoLevel
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.Port == 0 {
		opts.Port = 8080
	}
	return nil
}

func (s *Service) probeHandlers(opts Options) *domainhttp.ProbeHandlers {
	return &domainhttp.ProbeHandlers{
		LivenessCheck: func(context.Context) domainhttp.ProbeResponse {
			return domainhttp.NewProbeResponse(domainhttp.StatusOK, map[string]interface{}{
				"version": opts.Version,
				"uptime":  time.Since(s.startTime).String(),
			})
		},
		ReadinessCheck: func(context.Context) domainhttp.ProbeResponse {
			t := s.state.Load()
			if t == nil {
				return domainhttp.NewProbeResponse(domainhttp.StatusStarting, nil)
			}
			r := t.resolver
			details := map[string]interface{}{
				"routes":     len(r.Templates()),
				"cache_size": r.CacheLen(),
			}
			if err := r.Validate(); err != nil {
				details["error"] = err.Error()
				return domainhttp.NewProbeResponse(domainhttp.StatusFailed, details)
			}
			return domainhttp.NewProbeResponse(domainhttp.StatusOK, details)
		},
		StartupCheck: func(context.Context) domainhttp.ProbeResponse {
			if s.state.Load() == nil {
				return domainhttp.NewProbeResponse(domainhttp.StatusStarting, nil)
			}
			return domainhttp.NewProbeResponse(domainhttp.StatusOK, nil)
		},
	}
}
