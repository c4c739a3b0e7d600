package market

import (
	"strings"
	"sync"
)

// SymbolCache maps a normalized company name to a resolved ticker.
// Entries are never evicted; a hit is trusted without any network call.
type SymbolCache interface {
	Get(key string) (string, bool)
	Put(key, symbol string)
}

// MemoryCache is a process-lifetime SymbolCache.
type MemoryCache struct {
	mu      sync.RWMutex
	symbols map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{symbols: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.symbols[key]
	return s, ok
}

func (c *MemoryCache) Put(key, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbols[key] = symbol
}

// Len returns the number of cached names.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// CacheKey normalizes a company reference for cache lookups.
func CacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
