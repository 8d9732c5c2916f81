package routing

import (
	"fmt"
	"net/http"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	domainlog "github.com/damianoneill/go-routable/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-routable/pkg/domain/metrics"
	"github.com/damianoneill/go-routable/pkg/domain/route"
	domaintracing "github.com/damianoneill/go-routable/pkg/domain/tracing"
)

func (s *Service) initConfig(opts Options) error {
	defaults := map[string]interface{}{
		"server.http.port":          opts.Port,
		"server.http.read_timeout":  opts.ReadTimeout,
		"server.http.write_timeout": opts.WriteTimeout,
		"logging.level":             string(opts.LogLevel),
	}
	if opts.TracingEndpoint != "" {
		defaults["tracing.endpoint"] = opts.TracingEndpoint
	}

	cfgOpts := []domainconfig.Option{
		domainconfig.WithEnvPrefix(opts.EnvPrefix),
		domainconfig.WithDefaults(defaults),
		domainconfig.WithDefaults(opts.ConfigDefaults),
	}
	if opts.ConfigFile != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithConfigFile(opts.ConfigFile))
	}

	store, err := s.deps.ConfigFactory.NewStore(cfgOpts...)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	s.config = store
	return nil
}

func (s *Service) initLogger(opts Options) error {
	level := opts.LogLevel
	if raw, ok := s.config.GetString("logging.level"); ok {
		parsed, err := domainlog.ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		level = parsed
	}

	logger, err := s.deps.LoggerFactory.NewLogger(
		domainlog.WithLevel(level),
		domainlog.WithServiceName(opts.ServiceName),
		domainlog.WithFields(domainlog.Fields{"version": opts.Version}),
	)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	s.logger = logger
	return nil
}

func (s *Service) initTracing(opts Options) error {
	endpoint, _ := s.config.GetString("tracing.endpoint")
	if endpoint == "" || s.deps.TracerFactory == nil {
		return nil
	}

	exporter := domaintracing.GRPCExporter
	if raw, ok := s.config.GetString("tracing.exporter"); ok && raw != "" {
		exporter = domaintracing.ExporterType(raw)
	}

	provider, err := s.deps.TracerFactory.NewProvider(
		domaintracing.WithServiceName(opts.ServiceName),
		domaintracing.WithServiceVersion(opts.Version),
		domaintracing.WithCollectorEndpoint(endpoint),
		domaintracing.WithExporterType(exporter),
		domaintracing.WithInsecure(true),
		domaintracing.WithSamplingRate(1.0),
		domaintracing.WithDefaultPropagators(),
	)
	if err != nil {
		return fmt.Errorf("creating tracer: %w", err)
	}
	s.tracer = provider
	return nil
}

func (s *Service) initMetrics(opts Options) error {
	if s.deps.MetricsFactory == nil {
		return nil
	}

	collector, err := s.deps.MetricsFactory.NewCollector(
		domainmetrics.WithServiceName(opts.ServiceName),
		domainmetrics.WithLabels(map[string]string{"version": opts.Version}),
	)
	if err != nil {
		return fmt.Errorf("creating metrics collector: %w", err)
	}
	s.collector = collector
	return nil
}

// initResolver loads the route table. It is also the reload path.
func (s *Service) initResolver() error {
	cfg := RoutingConfig{Cache: true}
	if err := s.config.UnmarshalKey("routing", &cfg); err != nil {
		return fmt.Errorf("loading route table: %w", err)
	}

	r, err := s.buildResolver(cfg)
	if err != nil {
		return err
	}
	s.state.Store(&table{resolver: r, config: cfg})

	s.logger.InfoWith("Loaded route table", domainlog.Fields{
		"routes":        len(cfg.Routes),
		"global_params": len(cfg.GlobalParams),
		"cache":         cfg.Cache,
	})
	return nil
}

func (s *Service) buildResolver(cfg RoutingConfig) (*Resolver, error) {
	opts := []route.Option{
		route.WithLogger(s.logger),
		route.WithGlobalParams(cfg.GlobalParams),
	}
	if !cfg.Cache {
		opts = append(opts, route.WithCacheDisabled())
	}
	if s.collector != nil {
		opts = append(opts, route.WithMetricsCollector(s.collector))
	}
	if s.tracer != nil {
		opts = append(opts, route.WithTracingProvider(s.tracer))
	}

	r, err := route.New[*http.Request, Extras, Result](opts...)
	if err != nil {
		return nil, fmt.Errorf("creating resolver: %w", err)
	}
	for _, rc := range cfg.Routes {
		ro := route.Options[*http.Request, Extras, Result]{Defaults: rc.Defaults}
		if rc.Target != "" {
			ro.Callback = toTarget(rc.Target)
		}
		r.Map(rc.Template, ro)
	}

	if err := r.Validate(); err != nil {
		if cfg.Strict {
			return nil, fmt.Errorf("validating route table: %w", err)
		}
		s.logger.WarnWith("Route table contains invalid templates", domainlog.Fields{
			"error": err.Error(),
		})
	}
	return r, nil
}

func toTarget(name string) route.Callback[*http.Request, Extras, Result] {
	return func(ctx route.Context[*http.Request, Extras]) (Result, error) {
		return Result{
			Target:   name,
			Template: ctx.Template,
			URL:      ctx.URL,
			Params:   ctx.Params,
			Extras:   ctx.Extra,
		}, nil
	}
}

func (s *Service) initRouter(opts Options) error {
	routerOpts := []domainhttp.Option{
		domainhttp.WithService(opts.ServiceName, opts.Version),
		domainhttp.WithLogger(s.logger),
		domainhttp.WithProbeHandlers(s.probeHandlers(opts)),
		domainhttp.WithMetrics(s.collector != nil),
		domainhttp.WithObservabilityExclusions(
			[]string{"/internal/*", "/metrics"},
			[]string{"/internal/*", "/metrics"},
		),
	}
	if s.tracer != nil {
		routerOpts = append(routerOpts, domainhttp.WithTracingProvider(s.tracer))
	}

	router, err := s.deps.RouterFactory.NewRouter(routerOpts...)
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}
	s.router = router
	s.mountHandlers(router)

	if configurable, ok := s.logger.(domainlog.RuntimeConfigurable); ok {
		router.Mount("/internal/logging", configurable.GetConfigHandler())
		s.logger.InfoWith("Registered logger config endpoint", domainlog.Fields{
			"path": "/internal/logging",
		})
	}

	if masked, ok := s.config.(domainconfig.MaskedStore); ok && opts.EnableConfigViewer {
		router.Mount("/internal/config", masked.GetConfigHandler(domainconfig.NewDefaultMaskStrategy()))
		s.logger.InfoWith("Registered config viewer endpoint", domainlog.Fields{
			"path": "/internal/config",
		})
	}
	return nil
}

type configWatcher interface {
	Watch(onChange func(name string))
}

func (s *Service) initWatch(opts Options) {
	w, ok := s.config.(configWatcher)
	if !opts.WatchConfig || !ok || opts.ConfigFile == "" {
		return
	}

	w.Watch(func(name string) {
		if err := s.Reload(); err != nil {
			s.logger.ErrorWith("Route table reload failed", domainlog.Fields{
				"file":  name,
				"error": err.Error(),
			})
		}
	})
}
