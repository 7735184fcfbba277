package cache

import (
	"context"

	"github.com/rcliao/taskmarket/internal/recommend"
)

// Tiered reads through its layers in order and back-fills the faster layers
// on a hit further down. Writes go to every layer.
type Tiered struct {
	layers []recommend.PairCache
}

func NewTiered(layers ...recommend.PairCache) *Tiered {
	kept := make([]recommend.PairCache, 0, len(layers))
	for _, l := range layers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &Tiered{layers: kept}
}

func (t *Tiered) Get(ctx context.Context, key string) (float64, bool) {
	for i, layer := range t.layers {
		if v, ok := layer.Get(ctx, key); ok {
			for _, faster := range t.layers[:i] {
				faster.Set(ctx, key, v)
			}
			return v, true
		}
	}
	return 0, false
}

func (t *Tiered) Set(ctx context.Context, key string, value float64) {
	for _, layer := range t.layers {
		layer.Set(ctx, key, value)
	}
}
