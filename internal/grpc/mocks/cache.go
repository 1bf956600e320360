package mocks

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockCacher is a function-field cache for handler tests. Unset functions
// behave like an empty Redis: Get misses with redis.Nil, Set succeeds.
type MockCacher struct {
	GetFunc   func(ctx context.Context, key string, dest any) error
	SetFunc   func(ctx context.Context, key string, value any, expiration time.Duration) error
	CloseFunc func() error
}

func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return redis.Nil
}

func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MemoryCacher stores values as JSON, like the Redis cache, so a hit decodes
// into dest. Expiry is ignored.
type MemoryCacher struct {
	mu   sync.Mutex
	data map[string][]byte
	sets chan string
}

func NewMemoryCacher() *MemoryCacher {
	return &MemoryCacher{
		data: make(map[string][]byte),
		sets: make(chan string, 64),
	}
}

func (m *MemoryCacher) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (m *MemoryCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	select {
	case m.sets <- key:
	default:
	}
	return nil
}

func (m *MemoryCacher) Close() error { return nil }

// DeleteMatching supports only trailing-"*" patterns.
func (m *MemoryCacher) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

// Sets receives every key written. Stores happen in background goroutines,
// so tests wait on this before asserting on cached state.
func (m *MemoryCacher) Sets() <-chan string {
	return m.sets
}
