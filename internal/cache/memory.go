// Package cache provides PairCache backends for similarity scores.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MemoryCache is an in-process cache with a cost bound and per-entry TTL.
type MemoryCache struct {
	cache *ristretto.Cache[string, float64]
	ttl   time.Duration
}

// NewMemoryCache holds roughly maxEntries scores, each for ttl. A zero ttl
// keeps entries until evicted.
func NewMemoryCache(maxEntries int64, ttl time.Duration) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = 100_000
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, float64]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{cache: c, ttl: ttl}, nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (float64, bool) {
	return m.cache.Get(key)
}

func (m *MemoryCache) Set(_ context.Context, key string, value float64) {
	m.cache.SetWithTTL(key, value, 1, m.ttl)
}

// Wait blocks until buffered writes are applied.
func (m *MemoryCache) Wait() {
	m.cache.Wait()
}

func (m *MemoryCache) Close() error {
	m.cache.Close()
	return nil
}
