package manifest

import "sync"

// Cache memoizes discovery results per project directory. It is an explicit
// object passed to callers rather than package-level state, so tests and
// long-lived processes can scope and invalidate it deliberately. Entries
// survive until Invalidate is called for the directory (typically from a
// directory-change event) or the process exits.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	descriptors []Descriptor
	stats       Stats
}

// NewCache returns an empty discovery cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached discovery result for dir, if present.
func (c *Cache) Get(dir string) ([]Descriptor, Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[dir]
	return e.descriptors, e.stats, ok
}

// Put stores a discovery result for dir, replacing any previous entry.
func (c *Cache) Put(dir string, descriptors []Descriptor, stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = cacheEntry{descriptors: descriptors, stats: stats}
}

// Invalidate drops the cached result for dir. A miss is a no-op.
func (c *Cache) Invalidate(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, dir)
}

// Discover returns the cached result for root or runs a fresh discovery
// pass with p and caches it.
func (c *Cache) Discover(p *Parser, root string) ([]Descriptor, Stats) {
	if ds, stats, ok := c.Get(root); ok {
		return ds, stats
	}
	ds, stats := p.Discover(root)
	c.Put(root, ds, stats)
	return ds, stats
}
