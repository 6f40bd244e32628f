package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry represents a cached response with its storage timestamp
type Entry struct {
	Data     interface{}
	StoredAt time.Time
}

// Stats reports cache occupancy, split by freshness
type Stats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// Cache provides thread-safe response caching with TTL support.
// Expired entries are evicted lazily on lookup and swept periodically in the
// background so that keys which are never looked up again do not accumulate.
type Cache struct {
	data    map[string]*Entry
	mutex   sync.RWMutex
	ttl     time.Duration
	stopCh  chan struct{}
	stopped bool
	now     func() time.Time
}

// New creates a new Cache with the given TTL and background sweep interval
func New(ttl, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		data:   make(map[string]*Entry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}

	go c.cleanup(cleanupInterval)

	return c
}

// Key derives a deterministic cache key from an endpoint path and its
// parameters. Parameters are serialized in sorted order so identical logical
// requests collide regardless of insertion order.
func Key(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, name := range names {
		b.WriteByte('?')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// Get retrieves a value from the cache if it exists and hasn't expired.
// An expired entry is removed on the spot.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false
	}

	if c.now().Sub(entry.StoredAt) >= c.ttl {
		delete(c.data, key)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value in the cache, overwriting any previous entry for the key
func (c *Cache) Set(key string, data interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &Entry{
		Data:     data,
		StoredAt: c.now(),
	}
}

// Clear removes all entries from the cache
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*Entry)
}

// Stats returns occupancy counts at this instant
func (c *Cache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{Total: len(c.data)}
	now := c.now()
	for _, entry := range c.data {
		if now.Sub(entry.StoredAt) < c.ttl {
			stats.Valid++
		} else {
			stats.Expired++
		}
	}
	return stats
}

// cleanup runs periodically to remove expired entries
func (c *Cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

// removeExpired removes all expired entries from the cache
func (c *Cache) removeExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.Sub(entry.StoredAt) >= c.ttl {
			delete(c.data, key)
		}
	}
}

// Stop halts the background cleanup goroutine
func (c *Cache) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.stopped {
		c.stopped = true
		close(c.stopCh)
	}
}
