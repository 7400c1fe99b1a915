// Package cache holds a small in-process TTL cache for ranked retrieval
// results. Entries are tenant-keyed by the caller; this layer only handles
// expiry.
package cache

import (
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type entry struct {
	value     []domain.RetrievedChunk
	expiresAt time.Time
}

type TTLCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &TTLCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (c *TTLCache) Get(key string) ([]domain.RetrievedChunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Set(key string, value []domain.RetrievedChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Piggyback expiry sweeps on writes; the key space is tiny.
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(c.ttl)}
}
