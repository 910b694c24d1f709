package puppetfacts

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache stores resolved fact sets by request key. Implementations
// store and return deep copies, so callers may mutate what they get.
type resultCache interface {
	Get(key string) (map[string]Facts, bool)
	Put(key string, result map[string]Facts)
	Clear()
	Len() int
}

// Compile-time interface compliance checks
var (
	_ resultCache = (*memoryCache)(nil)
	_ resultCache = (*lruCache)(nil)
)

// newResultCache returns an unbounded cache for size 0 and an LRU cache of
// size entries otherwise.
func newResultCache(size int) (resultCache, error) {
	if size == 0 {
		return newMemoryCache(), nil
	}
	return newLRUCache(size)
}

// memoryCache is an unbounded thread-safe cache.
type memoryCache struct {
	mu    sync.RWMutex
	items map[string]map[string]Facts
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]map[string]Facts)}
}

func (c *memoryCache) Get(key string) (map[string]Facts, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return cloneResult(result), true
}

func (c *memoryCache) Put(key string, result map[string]Facts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cloneResult(result)
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]map[string]Facts)
}

func (c *memoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// lruCache keeps the most recently used results.
type lruCache struct {
	items *lru.Cache[string, map[string]Facts]
}

func newLRUCache(size int) (*lruCache, error) {
	items, err := lru.New[string, map[string]Facts](size)
	if err != nil {
		return nil, err
	}
	return &lruCache{items: items}, nil
}

func (c *lruCache) Get(key string) (map[string]Facts, bool) {
	result, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return cloneResult(result), true
}

func (c *lruCache) Put(key string, result map[string]Facts) {
	c.items.Add(key, cloneResult(result))
}

func (c *lruCache) Clear() { c.items.Purge() }

func (c *lruCache) Len() int { return c.items.Len() }

// cloneResult deep-copies a resolution result.
func cloneResult(result map[string]Facts) map[string]Facts {
	if result == nil {
		return nil
	}
	out := make(map[string]Facts, len(result))
	for id, facts := range result {
		out[id] = facts.Clone()
	}
	return out
}
