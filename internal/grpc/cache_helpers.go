package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/rating-report/internal/metrics"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// cacheEntry names the key and the metrics label of one cached value.
type cacheEntry struct {
	key      string
	endpoint string
	ttl      time.Duration
}

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	if ttl+jitter <= 0 {
		return ttl
	}
	return ttl + jitter
}

func storeInBackground[T any](c Cacher, e cacheEntry, logger *zap.Logger, value T) {
	setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(e.ttl)
	if err := c.Set(setCtx, e.key, value, ttl); err != nil {
		logger.Warn("failed to store cache entry", zap.String("key", e.key), zap.Error(err))
		return
	}
	logger.Debug("cache entry stored", zap.String("key", e.key), zap.Duration("ttl", ttl))
}

// triggerBackgroundRefresh re-fetches a key after a hit so a popular report
// never expires cold. Concurrent refreshes of one key collapse into one.
func triggerBackgroundRefresh[T any](c Cacher, sf *singleflight.Group, e cacheEntry, logger *zap.Logger, fn FetchFunc[T]) {
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = sf.Do(e.key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", e.key), zap.Error(err))
				return nil, err
			}
			storeInBackground(c, e, logger, value)
			return value, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead. A nil Cacher disables caching; fetches are still collapsed.
func FindAndCache[T any](ctx context.Context, c Cacher, sf *singleflight.Group, e cacheEntry, logger *zap.Logger, fn FetchFunc[T]) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	if c != nil {
		var cached T
		err := c.Get(ctx, e.key, &cached)
		switch {
		case err == nil:
			metrics.CacheResultsTotal.WithLabelValues(e.endpoint, "hit").Inc()
			logger.Debug("cache hit", zap.String("key", e.key))
			triggerBackgroundRefresh(c, sf, e, logger, fn)
			return cached, nil

		case errors.Is(err, redis.Nil):
			metrics.CacheResultsTotal.WithLabelValues(e.endpoint, "miss").Inc()
			logger.Debug("cache miss", zap.String("key", e.key))

		default:
			metrics.CacheResultsTotal.WithLabelValues(e.endpoint, "error").Inc()
			logger.Warn("cache get error (treating as miss)", zap.String("key", e.key), zap.Error(err))
		}
	}

	v, err, shared := sf.Do(e.key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if c != nil {
			go storeInBackground(c, e, logger, value)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", e.key))
		return zero, fmt.Errorf("type mismatch for key %q", e.key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", e.key))
	}
	return value, nil
}
