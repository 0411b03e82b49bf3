// Package memory provides an in-process Cache used when no Redis address is
// configured. Values are JSON round-tripped so callers see the same decoding
// behavior as with the Redis backend.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/observability"
)

type entry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

func (e entry) expired() bool {
	return !e.expires.IsZero() && time.Now().After(e.expires)
}

type Cache struct {
	mu sync.RWMutex
	m  map[string]entry
}

func New() *Cache {
	return &Cache{m: make(map[string]entry)}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if ok && e.expired() {
		// Re-check under the write lock: a concurrent Set may have replaced
		// the entry after the read lock was dropped.
		c.mu.Lock()
		if cur, live := c.m[key]; live && cur.expired() {
			delete(c.m, key)
		}
		c.mu.Unlock()
		ok = false
	}
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.data, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{data: b, expires: exp}
	c.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c.mu.Lock()
	for _, k := range keys {
		delete(c.m, k)
	}
	c.mu.Unlock()
	observability.ObserveCache("memory", "del")
	return nil
}
