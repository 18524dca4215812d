package fetch

import (
	"net/url"
	"sync"
)

// Cache stores raw response bodies keyed by request signature. Entries are
// never evicted; a cache lives for one batch run and is discarded with it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache returns an empty response cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Key builds the cache key for a request: the URL followed by the sorted,
// encoded query parameters. Identical parameter sets produce identical keys
// regardless of insertion order.
func Key(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}

// Get returns the cached body for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.entries[key]
	return body, ok
}

// Put stores a response body under key.
func (c *Cache) Put(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}

// Len reports the number of cached responses.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
