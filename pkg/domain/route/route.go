// Package route resolves URL paths against a registry of path templates.
//
// A template is a slash separated pattern made of literal segments, named
// parameters and wildcard parameters:
//
//	users/:id                  binds {"id": "42"} for "users/42"
//	groups/:id/topics/:topic   binds two parameters
//	files/:path:/download      binds {"path": "a/b/c"} for "files/a/b/c/download"
//
// A Resolver owns the templates, memoizes path bindings, merges query
// parameters, per-route defaults and global parameters, and hands the result
// to the matched route's Callback. The host, extra and result types are type
// parameters so the package has no opinion about what a resolution produces.
package route

import "maps"

// Values is the merged parameter set handed to a Callback. Path, query and
// per-route default values are strings; global parameters may be anything.
type Values map[string]any

// String returns the value stored under key if it is a string.
func (v Values) String(key string) (string, bool) {
	s, ok := v[key].(string)
	return s, ok
}

// Context describes a single resolution to a Callback.
type Context[H, E any] struct {
	// Params holds path, query, default and global parameters
	Params Values

	// Extra is the opaque data supplied to Resolve
	Extra E

	// Host is the caller's environment, e.g. an *http.Request
	Host H

	// URL is the raw input exactly as passed to Resolve
	URL string

	// Template is the matched template as it was registered
	Template string
}

// Callback builds the application result for a matched route.
type Callback[H, E, R any] func(ctx Context[H, E]) (R, error)

// Options is the data attached to a registered template.
type Options[H, E, R any] struct {
	// Callback is invoked on a successful match. A nil Callback makes the
	// route informational: it resolves to the zero result without error.
	Callback Callback[H, E, R]

	// Defaults fill parameters left unbound by the path and the query.
	Defaults map[string]string
}

// LookupResult is a resolved template and its string parameters.
type LookupResult struct {
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

// Binding is what the cache keeps for a normalized path: the matched route
// and the parameters derived from the path alone.
type Binding[H, E, R any] struct {
	Template string
	Options  Options[H, E, R]
	Params   map[string]string
}

func (b Binding[H, E, R]) clone() Binding[H, E, R] {
	b.Params = maps.Clone(b.Params)
	return b
}
