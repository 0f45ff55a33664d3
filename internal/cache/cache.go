// Package cache holds search results in process memory for a fixed TTL.
package cache

import (
	"strings"
	"sync"
	"time"

	"shoescout/internal/model"
)

type entry struct {
	results []model.Shoe
	at      time.Time
}

// SearchCache maps lowercased query strings to cached result sets. Entries
// expire by check-on-read only; there is no background sweep.
type SearchCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewSearchCache(ttl time.Duration) *SearchCache {
	return &SearchCache{
		entries: map[string]entry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key normalizes a query into its cache key.
func Key(query string) string {
	return strings.ToLower(query)
}

func (c *SearchCache) Get(key string) ([]model.Shoe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.at) > c.ttl {
		return nil, false
	}
	return e.results, true
}

func (c *SearchCache) Set(key string, results []model.Shoe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{results: results, at: c.now()}
}
