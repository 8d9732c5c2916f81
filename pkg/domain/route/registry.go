package route

import "sync"

// Set selects one of the two registry buckets.
type Set int

const (
	// ExactSet holds templates without wildcard parameters.
	ExactSet Set = iota

	// WildcardSet holds templates with at least one wildcard parameter.
	WildcardSet
)

// Entry is a registered template and its options.
type Entry[H, E, R any] struct {
	Template Template
	Options  Options[H, E, R]
}

type bucket[H, E, R any] struct {
	entries []Entry[H, E, R]
	index   map[string]int
}

func (b *bucket[H, E, R]) put(e Entry[H, E, R]) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[e.Template.raw]; ok {
		b.entries[i] = e
		return
	}
	b.index[e.Template.raw] = len(b.entries)
	b.entries = append(b.entries, e)
}

// Registry keeps templates in registration order, split into an exact and a
// wildcard bucket. Re-adding a template string replaces its options and keeps
// its original position.
type Registry[H, E, R any] struct {
	mu        sync.RWMutex
	exact     bucket[H, E, R]
	wildcards bucket[H, E, R]
}

// NewRegistry returns an empty registry.
func NewRegistry[H, E, R any]() *Registry[H, E, R] {
	return &Registry[H, E, R]{}
}

// Add registers format in the bucket its segments call for.
func (r *Registry[H, E, R]) Add(format string, opts Options[H, E, R]) Template {
	t := ParseTemplate(format)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t.IsWildcard() {
		r.wildcards.put(Entry[H, E, R]{Template: t, Options: opts})
	} else {
		r.exact.put(Entry[H, E, R]{Template: t, Options: opts})
	}
	return t
}

// Entries returns a snapshot of one bucket in registration order.
func (r *Registry[H, E, R]) Entries(set Set) []Entry[H, E, R] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b := &r.exact
	if set == WildcardSet {
		b = &r.wildcards
	}
	return append([]Entry[H, E, R](nil), b.entries...)
}

// Templates lists every registered template, exact ones first.
func (r *Registry[H, E, R]) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.exact.entries)+len(r.wildcards.entries))
	for _, e := range r.exact.entries {
		out = append(out, e.Template.raw)
	}
	for _, e := range r.wildcards.entries {
		out = append(out, e.Template.raw)
	}
	return out
}

// Len returns the number of registered templates across both buckets.
func (r *Registry[H, E, R]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exact.entries) + len(r.wildcards.entries)
}
