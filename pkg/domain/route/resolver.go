package route

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/damianoneill/go-routable/pkg/domain/logging"
	"github.com/damianoneill/go-routable/pkg/domain/metrics"
	"github.com/damianoneill/go-routable/pkg/domain/options"
	"github.com/damianoneill/go-routable/pkg/domain/tracing"
)

const tracerName = "github.com/damianoneill/go-routable/pkg/domain/route"

// Resolver maps raw paths to application results of type R.
// H is the host context and E the per-call extra data handed through to
// callbacks untouched.
//
// Registration and global parameter changes may happen at any time; Resolve
// is safe for concurrent use.
type Resolver[H, E, R any] struct {
	registry *Registry[H, E, R]
	cache    *Cache[H, E, R]
	opts     ResolverOptions
	logger   logging.Logger
	tracer   trace.Tracer

	mu      sync.RWMutex
	globals map[string]any
}

// New creates an empty Resolver.
func New[H, E, R any](opts ...Option) (*Resolver[H, E, R], error) {
	var o ResolverOptions
	if err := options.Apply(&o, opts...); err != nil {
		return nil, fmt.Errorf("applying resolver option: %w", err)
	}

	r := &Resolver[H, E, R]{
		registry: NewRegistry[H, E, R](),
		cache:    NewCache[H, E, R](),
		opts:     o,
		logger:   o.Logger,
		globals:  maps.Clone(o.GlobalParams),
	}
	if r.logger == nil {
		r.logger = logging.Nop()
	}
	if r.globals == nil {
		r.globals = make(map[string]any)
	}
	if o.TracingProvider != nil && o.TracingProvider.IsEnabled() {
		r.tracer = o.TracingProvider.Tracer(tracerName)
	} else {
		r.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return r, nil
}

// Map registers format with opts, replacing any previous registration of the
// same template string. The cache is cleared so that earlier resolutions
// cannot shadow the new route.
func (r *Resolver[H, E, R]) Map(format string, opts Options[H, E, R]) {
	t := r.registry.Add(format, opts)
	r.ClearCache()

	r.logger.DebugWith("Mapped route", logging.Fields{
		"template": format,
		"wildcard": t.IsWildcard(),
	})
}

// MapFunc registers format with a callback and no defaults.
func (r *Resolver[H, E, R]) MapFunc(format string, callback Callback[H, E, R]) {
	r.Map(format, Options[H, E, R]{Callback: callback})
}

// GlobalParam sets a parameter applied to every resolution that does not
// bind key itself. It returns r for chaining.
func (r *Resolver[H, E, R]) GlobalParam(key string, value any) *Resolver[H, E, R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globals[key] = value
	return r
}

// GlobalParams returns a copy of the current global parameters.
func (r *Resolver[H, E, R]) GlobalParams() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.globals)
}

// ClearCache drops every memoized binding.
func (r *Resolver[H, E, R]) ClearCache() {
	r.cache.Clear()
	if c := r.opts.MetricsCollector; c != nil {
		c.SetCacheSize(0)
	}
}

// CacheLen returns the number of memoized paths.
func (r *Resolver[H, E, R]) CacheLen() int {
	return r.cache.Len()
}

// Templates lists registered templates, exact ones before wildcard ones,
// each group in registration order.
func (r *Resolver[H, E, R]) Templates() []string {
	return r.registry.Templates()
}

// Validate checks every registered template and joins all problems found.
// Calling it once after registration surfaces malformed templates before the
// first request exercises them.
func (r *Resolver[H, E, R]) Validate() error {
	var errs []error
	for _, e := range r.registry.Entries(WildcardSet) {
		if err := e.Template.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the matched template and its path and query parameters
// without invoking a callback or applying defaults.
func (r *Resolver[H, E, R]) Lookup(rawPath string) (LookupResult, error) {
	b, _, err := r.bind(r.logger, rawPath)
	if err != nil {
		return LookupResult{}, err
	}
	query, err := parseQuery(rawPath)
	if err != nil {
		r.logger.WarnWith("Ignoring malformed query parameters", logging.Fields{
			"url":   rawPath,
			"error": err.Error(),
		})
	}
	for k, v := range query {
		b.Params[k] = v
	}
	return LookupResult{Template: b.Template, Params: b.Params}, nil
}

// Resolve matches rawPath, merges its parameters and returns the matched
// route's callback result. Routes without a callback yield the zero R and a
// nil error. Errors match ErrRouteNotFound or ErrInvalidTemplate via
// errors.Is, or wrap the callback's own error.
func (r *Resolver[H, E, R]) Resolve(ctx context.Context, rawPath string, extra E, host H) (R, error) {
	var zero R
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "route.resolve",
		trace.WithAttributes(tracing.AttrRoutePath.String(rawPath)))
	defer span.End()
	logger := r.logger.WithContext(ctx)

	b, hit, err := r.bind(logger, rawPath)
	if err != nil {
		outcome := metrics.OutcomeNotFound
		if errors.Is(err, ErrInvalidTemplate) {
			outcome = metrics.OutcomeInvalidTemplate
		} else {
			logger.WarnWith("No route found", logging.Fields{"url": rawPath})
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.record(span, metrics.UnmatchedTemplate, outcome, false, start)
		return zero, err
	}

	if b.Options.Callback == nil {
		logger.DebugWith("Matched route has no callback", logging.Fields{
			"url":      rawPath,
			"template": b.Template,
		})
		r.record(span, b.Template, metrics.OutcomeNoCallback, hit, start)
		return zero, nil
	}

	query, err := parseQuery(rawPath)
	if err != nil {
		logger.WarnWith("Ignoring malformed query parameters", logging.Fields{
			"url":   rawPath,
			"error": err.Error(),
		})
	}

	result, err := b.Options.Callback(Context[H, E]{
		Params:   r.merge(b, query),
		Extra:    extra,
		Host:     host,
		URL:      rawPath,
		Template: b.Template,
	})
	if err != nil {
		err = fmt.Errorf("resolving %s via %s: %w", rawPath, b.Template, err)
		logger.ErrorWith("Route callback failed", logging.Fields{
			"url":      rawPath,
			"template": b.Template,
			"error":    err.Error(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.record(span, b.Template, metrics.OutcomeCallbackError, hit, start)
		return zero, err
	}

	r.record(span, b.Template, metrics.OutcomeResolved, hit, start)
	return result, nil
}

// bind returns the path-derived binding for rawPath, from the cache when
// possible. The returned Params map is owned by the caller.
func (r *Resolver[H, E, R]) bind(logger logging.Logger, rawPath string) (Binding[H, E, R], bool, error) {
	key := Normalize(rawPath)
	if !r.opts.DisableCache {
		if b, ok := r.cache.Get(key); ok {
			logger.DebugWith("Route cache hit", logging.Fields{"path": key, "template": b.Template})
			return b, true, nil
		}
	}
	// Taken before the registry is read; a Clear after this point makes
	// PutIf drop the binding.
	gen := r.cache.Generation()

	// Exact templates first so a generic wildcard never shadows them.
	input := Unescape(Split(key))
	b, found, err := r.matchSet(logger, ExactSet, input)
	if !found {
		var wildErr error
		b, found, wildErr = r.matchSet(logger, WildcardSet, input)
		err = errors.Join(err, wildErr)
	}
	if !found {
		if err != nil {
			return Binding[H, E, R]{}, false, err
		}
		return Binding[H, E, R]{}, false, &NotFoundError{Path: rawPath}
	}

	if !r.opts.DisableCache {
		r.cache.PutIf(gen, key, b)
	}
	logger.DebugWith("Route cache miss", logging.Fields{"path": key, "template": b.Template})
	return b, false, nil
}

// matchSet tries one bucket in registration order. A malformed template is
// logged and skipped so later templates still get their chance; its error is
// returned only when nothing in the bucket matched.
func (r *Resolver[H, E, R]) matchSet(logger logging.Logger, set Set, input []string) (Binding[H, E, R], bool, error) {
	var firstErr error
	for _, e := range r.registry.Entries(set) {
		params, ok, err := Match(e.Template, input, set == WildcardSet)
		if err != nil {
			logger.ErrorWith("Invalid route template", logging.Fields{
				"template": e.Template.raw,
				"error":    err.Error(),
			})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return Binding[H, E, R]{Template: e.Template.raw, Options: e.Options, Params: params}, true, nil
		}
	}
	return Binding[H, E, R]{}, false, firstErr
}

// merge layers parameters for one call. Query values override path values;
// route defaults and then global parameters only fill keys still absent.
func (r *Resolver[H, E, R]) merge(b Binding[H, E, R], query map[string]string) Values {
	vals := make(Values, len(b.Params)+len(query)+len(b.Options.Defaults))
	for k, v := range b.Params {
		vals[k] = v
	}
	for k, v := range query {
		vals[k] = v
	}
	for k, v := range b.Options.Defaults {
		if _, ok := vals[k]; !ok {
			vals[k] = v
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, v := range r.globals {
		if _, ok := vals[k]; !ok {
			vals[k] = v
		}
	}
	return vals
}

func (r *Resolver[H, E, R]) record(span trace.Span, template string, outcome metrics.Outcome, hit bool, start time.Time) {
	span.SetAttributes(
		tracing.AttrRouteTemplate.String(template),
		tracing.AttrRouteOutcome.String(string(outcome)),
		tracing.AttrRouteCacheHit.Bool(hit),
	)
	if c := r.opts.MetricsCollector; c != nil {
		c.CollectResolution(template, outcome, hit, time.Since(start).Seconds())
		c.SetCacheSize(r.cache.Len())
	}
}

// parseQuery extracts "?k1=v1&k2=v2" from the raw input. Only the first value
// of a repeated key is kept. Well formed pairs are returned even when others
// fail to decode.
func parseQuery(rawPath string) (map[string]string, error) {
	i := strings.IndexByte(rawPath, '?')
	if i < 0 {
		return nil, nil
	}
	q := rawPath[i+1:]
	if j := strings.IndexByte(q, '#'); j >= 0 {
		q = q[:j]
	}

	values, err := url.ParseQuery(q)
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, err
}
