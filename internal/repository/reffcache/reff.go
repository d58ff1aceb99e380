// Package reffcache shares remote reference answers across processes via the KV store.
package reffcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctsrange/internal/db"
)

// DefaultKeyPrefix namespaces cached reference lists.
const DefaultKeyPrefix = "ctsrange:reff:"

// Fetcher is the decorated reference service.
type Fetcher interface {
	ValidReff(ctx context.Context, urn string) ([]string, error)
}

// store is the consumer interface for the reference cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher caches reference lists in a key-value store.
// Only successful answers are cached; failures always reach the inner fetcher next time.
type CachedFetcher struct {
	inner      Fetcher
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. ttl <= 0 stores entries without expiry.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		prefix:     DefaultKeyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithKeyPrefix overrides the key namespace.
func (c *CachedFetcher) WithKeyPrefix(prefix string) *CachedFetcher {
	if prefix != "" {
		c.prefix = prefix
	}
	return c
}

// ValidReff returns a cached reference list or calls the inner fetcher.
func (c *CachedFetcher) ValidReff(ctx context.Context, urn string) ([]string, error) {
	key := c.prefix + urn

	if reff, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return reff, nil
	}

	c.incCache("miss")

	reff, err := c.inner.ValidReff(ctx, urn)
	if err != nil {
		return nil, fmt.Errorf("fetch valid reff: %w", err)
	}

	c.putToCache(ctx, key, reff)
	return reff, nil
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached references", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var reff []string
	if err := json.Unmarshal(data, &reff); err != nil {
		c.logger.Warn("Failed to parse cached references", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return reff, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, reff []string) {
	if reff == nil {
		reff = []string{}
	}
	data, err := json.Marshal(reff)
	if err != nil {
		c.logger.Warn("Failed to encode references", zap.String("key", key), zap.Error(err))
		return
	}
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache references", zap.String("key", key), zap.Error(err))
	}
}
