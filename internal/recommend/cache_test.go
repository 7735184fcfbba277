package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/metrics"
)

type mapCache struct {
	mu sync.Mutex
	m  map[string]float64
}

func (c *mapCache) Get(_ context.Context, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

func TestPairKey(t *testing.T) {
	a := &domain.Task{ID: "a", Description: "paint the fence"}
	b := &domain.Task{ID: "b", Description: "walk the dog"}

	assert.Equal(t, PairKey(a, b), PairKey(b, a))

	edited := *b
	edited.Description = "walk the cat"
	assert.NotEqual(t, PairKey(a, b), PairKey(a, &edited))
}

func TestCachedSimilarity(t *testing.T) {
	var calls atomic.Int32
	next := SimilarityFunc(func(x, y string) float64 {
		calls.Add(1)
		return 0.25
	})
	cache := &mapCache{m: make(map[string]float64)}
	sim := NewCachedSimilarity(next, cache)

	a := &domain.Task{ID: "a", Description: "paint the fence"}
	b := &domain.Task{ID: "b", Description: "walk the dog"}
	ctx := context.Background()

	hits := testutil.ToFloat64(metrics.SimilarityCache.WithLabelValues("hit"))
	misses := testutil.ToFloat64(metrics.SimilarityCache.WithLabelValues("miss"))

	assert.Equal(t, 0.25, sim.Between(ctx, a, b))
	assert.Equal(t, 0.25, sim.Between(ctx, b, a))
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.SimilarityCache.WithLabelValues("hit")))
	assert.Equal(t, misses+1, testutil.ToFloat64(metrics.SimilarityCache.WithLabelValues("miss")))
}

func TestCachedSimilarity_RankingUnchanged(t *testing.T) {
	store := newFakeStore()
	store.add("done", "clean the kitchen floor", false)
	store.add("c1", "repair the car engine", true, "p1")
	store.add("c2", "clean kitchen windows", true)
	store.add("c3", "mop the kitchen floor", true, "p1")
	store.completed = []string{"done"}
	store.interests = []string{"p1"}
	ctx := context.Background()

	plain, err := NewRanker(store).Rank(ctx, "u1")
	require.NoError(t, err)

	cached := NewCachedSimilarity(CountingSimilarity{Next: TextSimilarity}, &mapCache{m: make(map[string]float64)})
	ranker := NewRanker(store, WithSimilarity(cached))

	before := testutil.ToFloat64(metrics.SimilarityComputations)
	first, err := ranker.Rank(ctx, "u1")
	require.NoError(t, err)
	second, err := ranker.Rank(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, plain, first)
	assert.Equal(t, plain, second)
	// second call is served entirely from the cache
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.SimilarityComputations))
}
