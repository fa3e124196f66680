package layout

import "sync"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// cache is keyed by the canonical descriptor text, which is unique per
// descriptor.
type cache struct {
	mu     sync.RWMutex
	byType map[string]cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[string]cacheEntry, 64)}
}

func (c *cache) get(key string) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byType[key]
	return e, ok
}

func (c *cache) put(key string, e *cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e == nil {
		delete(c.byType, key)
		return
	}
	c.byType[key] = *e
}
