package analytics

import (
	"sync"
	"time"
)

// Cache is a tiny in-memory TTL cache for warehouse query results, keyed by
// the SQL text.
type Cache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	rows []map[string]any
	ts   time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: make(map[string]cacheEntry), ttl: ttl}
}

// Get returns cached rows and true if present and not expired.
func (c *Cache) Get(sql string) ([]map[string]any, bool) {
	c.mu.RLock()
	e, ok := c.store[sql]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, sql)
		c.mu.Unlock()
		return nil, false
	}
	return e.rows, true
}

func (c *Cache) Set(sql string, rows []map[string]any) {
	c.mu.Lock()
	c.store[sql] = cacheEntry{rows: rows, ts: time.Now()}
	c.mu.Unlock()
}
