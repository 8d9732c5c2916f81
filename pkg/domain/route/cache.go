package route

import "sync"

// Cache memoizes bindings by normalized path. Entries are never evicted
// individually; Clear drops them all and starts a new generation.
type Cache[H, E, R any] struct {
	mu      sync.RWMutex
	entries map[string]Binding[H, E, R]
	gen     uint64
}

// NewCache returns an empty cache.
func NewCache[H, E, R any]() *Cache[H, E, R] {
	return &Cache[H, E, R]{entries: make(map[string]Binding[H, E, R])}
}

// Get returns a copy of the binding stored for path.
func (c *Cache[H, E, R]) Get(path string) (Binding[H, E, R], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.entries[path]
	if !ok {
		return Binding[H, E, R]{}, false
	}
	return b.clone(), true
}

// Put stores a copy of b under path, replacing any previous entry.
func (c *Cache[H, E, R]) Put(path string, b Binding[H, E, R]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = b.clone()
}

// PutIf stores b like Put, but only while the cache is still at generation
// gen. It reports whether b was stored. A binding computed before a Clear is
// dropped instead of outliving it.
func (c *Cache[H, E, R]) PutIf(gen uint64, path string, b Binding[H, E, R]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.entries[path] = b.clone()
	return true
}

// Generation returns the number of Clear calls so far.
func (c *Cache[H, E, R]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Clear removes every entry.
func (c *Cache[H, E, R]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.gen++
}

// Len returns the number of cached paths.
func (c *Cache[H, E, R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
