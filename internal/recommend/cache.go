package recommend

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/metrics"
)

// PairCache stores similarity scores by PairKey. Implementations treat any
// backend failure as a miss.
type PairCache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, value float64)
}

// PairKey identifies a similarity score by both task IDs and a hash of both
// descriptions. Editing either description yields a different key, so stale
// entries are never read back. The key is order independent.
func PairKey(a, b *domain.Task) string {
	ka := taskKey(a)
	kb := taskKey(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return "sim:" + ka + "|" + kb
}

func taskKey(t *domain.Task) string {
	return t.ID + "@" + strconv.FormatUint(xxhash.Sum64String(t.Description), 16)
}

// CachedSimilarity memoizes another Similarity through a PairCache.
type CachedSimilarity struct {
	next  Similarity
	cache PairCache
}

func NewCachedSimilarity(next Similarity, cache PairCache) *CachedSimilarity {
	if next == nil {
		next = TextSimilarity
	}
	return &CachedSimilarity{next: next, cache: cache}
}

func (c *CachedSimilarity) Between(ctx context.Context, a, b *domain.Task) float64 {
	key := PairKey(a, b)
	if v, ok := c.cache.Get(ctx, key); ok {
		metrics.SimilarityCache.WithLabelValues("hit").Inc()
		return v
	}
	metrics.SimilarityCache.WithLabelValues("miss").Inc()

	v := c.next.Between(ctx, a, b)
	c.cache.Set(ctx, key, v)
	return v
}

// CountingSimilarity reports every computed pair to the similarity counter.
type CountingSimilarity struct {
	Next Similarity
}

func (c CountingSimilarity) Between(ctx context.Context, a, b *domain.Task) float64 {
	metrics.SimilarityComputations.Inc()
	return c.Next.Between(ctx, a, b)
}
