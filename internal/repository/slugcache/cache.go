// Package slugcache caches slug lookups of buildings and architects in a
// key-value store.
package slugcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

const keyPrefix = "pocketnavi:"

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// LoadFunc reads an entity by slug from the source of truth.
type LoadFunc[T any] func(ctx context.Context, slug string) (T, error)

// Cache is a read-through decorator over a slug lookup. Misses and
// errors of the source are never cached; cache failures only log.
type Cache[T any] struct {
	kind       string
	load       LoadFunc[T]
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. kind namespaces the keys ("building",
// "architect"). cacheTotal is a counter vec with label "result"
// ("hit"/"miss"), passed explicitly.
func New[T any](
	kind string,
	load LoadFunc[T],
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache[T] {
	return &Cache[T]{
		kind:       kind,
		load:       load,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// GetBySlug returns the cached entity or loads and caches it.
func (c *Cache[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	key := c.cacheKey(slug)

	if v, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return v, nil
	}

	c.incCache("miss")

	v, err := c.load(ctx, slug)
	if err != nil {
		var zero T
		return zero, err
	}

	c.putToCache(ctx, key, v)
	return v, nil
}

func (c *Cache[T]) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache[T]) cacheKey(slug string) string {
	return keyPrefix + c.kind + ":slug:" + slug
}

func (c *Cache[T]) getFromCache(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached entry", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if len(data) == 0 {
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("Failed to parse cached entry", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return v, true
}

func (c *Cache[T]) putToCache(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache entry", zap.String("key", key), zap.Error(fmt.Errorf("set: %w", err)))
	}
}
