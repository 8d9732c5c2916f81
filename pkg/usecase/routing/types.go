package routing

import (
	"context"
	"net/http"
	"time"

	domainconfig "github.com/damianoneill/go-routable/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-routable/pkg/domain/http"
	domainlog "github.com/damianoneill/go-routable/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-routable/pkg/domain/metrics"
	"github.com/damianoneill/go-routable/pkg/domain/route"
	domaintracing "github.com/damianoneill/go-routable/pkg/domain/tracing"
)

// Dependencies contains all external dependencies required by the service.
// MetricsFactory and TracerFactory are optional.
type Dependencies struct {
	ConfigFactory  domainconfig.Factory
	LoggerFactory  domainlog.Factory
	RouterFactory  domainhttp.Factory
	TracerFactory  domaintracing.Factory
	MetricsFactory domainmetrics.Factory
}

// Options configures the routing service. Anything left zero is defaulted
// and may be overridden by the config file.
type Options struct {
	ServiceName string
	Version     string

	ConfigFile         string
	EnvPrefix          string
	ConfigDefaults     map[string]interface{}
	EnableConfigViewer bool

	// WatchConfig reloads the route table when the config file changes.
	WatchConfig bool

	LogLevel domainlog.Level

	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	TracingEndpoint string
}

// ServerHooks replaces the listener calls in tests.
type ServerHooks struct {
	ListenAndServe func() error
	Shutdown       func(context.Context) error
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RouteConfig is one entry of the "routing.routes" table. A route without a
// target is informational: it matches but produces no result.
type RouteConfig struct {
	Template string            `mapstructure:"template" json:"template"`
	Target   string            `mapstructure:"target" json:"target,omitempty"`
	Defaults map[string]string `mapstructure:"defaults" json:"defaults,omitempty"`
}

// RoutingConfig is the "routing" config section.
type RoutingConfig struct {
	// Cache memoizes path bindings. Defaults to true.
	Cache bool `mapstructure:"cache"`

	// Strict refuses to load a table containing a malformed template.
	Strict bool `mapstructure:"strict"`

	GlobalParams map[string]interface{} `mapstructure:"global_params"`
	Routes       []RouteConfig          `mapstructure:"routes"`
}

// Extras is the caller-supplied data passed through to the result.
type Extras map[string]interface{}

// Result is what a resolved URL maps to.
type Result struct {
	Target   string       `json:"target"`
	Template string       `json:"template"`
	URL      string       `json:"url"`
	Params   route.Values `json:"params"`
	Extras   Extras       `json:"extras,omitempty"`
}

// Resolver is the resolver type the service hosts.
type Resolver = route.Resolver[*http.Request, Extras, Result]

type resolveRequest struct {
	URL    string `json:"url"`
	Extras Extras `json:"extras"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type routesResponse struct {
	Routes       []RouteConfig          `json:"routes"`
	GlobalParams map[string]interface{} `json:"global_params"`
	CacheSize    int                    `json:"cache_size"`
}
