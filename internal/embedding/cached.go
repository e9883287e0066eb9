// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package embedding

import (
	"context"

	"github.com/tomtom215/ideaforge/internal/cache"
	"github.com/tomtom215/ideaforge/internal/metrics"
)

// CachedEmbedder memoizes an Embedder by exact text. Returned slices are
// copies and may be modified by the caller.
type CachedEmbedder struct {
	next  Embedder
	cache *cache.LRU[[]float32]
}

// NewCachedEmbedder wraps next with an LRU of the given size.
func NewCachedEmbedder(next Embedder, size int) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache.NewLRU[[]float32](size, 0)}
}

// Embed returns the cached vector or computes and stores it. Errors are
// not cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		metrics.EmbeddingCacheHits.Inc()
		return clone(v), nil
	}
	metrics.EmbeddingCacheMisses.Inc()

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, clone(v))
	return v, nil
}

// Dimension returns the wrapped embedder's width.
func (c *CachedEmbedder) Dimension() int { return c.next.Dimension() }

// Name returns the wrapped embedder's provider name.
func (c *CachedEmbedder) Name() string { return c.next.Name() }

// Stats returns cache hit and miss counts and the current size.
func (c *CachedEmbedder) Stats() (hits, misses int64, size int) { return c.cache.Stats() }

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
