package mocks

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// TrackingCache is an in-process stand-in for the Redis cache that counts
// lookups, hits and writes.
type TrackingCache struct {
	GetCalls atomic.Int64
	Hits     atomic.Int64
	SetCalls atomic.Int64

	mu   sync.Mutex
	data map[string]cacheEntry
}

type cacheEntry struct {
	raw    []byte
	expiry time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{data: make(map[string]cacheEntry)}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.GetCalls.Add(1)
	c.mu.Lock()
	entry, ok := c.data[key]
	c.mu.Unlock()
	if !ok || time.Now().After(entry.expiry) {
		return redis.Nil
	}
	c.Hits.Add(1)
	return json.Unmarshal(entry.raw, dest)
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = cacheEntry{raw: raw, expiry: time.Now().Add(exp)}
	c.mu.Unlock()
	c.SetCalls.Add(1)
	return nil
}

func (c *TrackingCache) Close() error {
	return nil
}

// DeleteMatching supports trailing-"*" patterns only.
func (c *TrackingCache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func (c *TrackingCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
