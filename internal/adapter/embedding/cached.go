package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"shastra/internal/domain"
	"shastra/internal/port"
)

// VectorCache persists embeddings across runs, keyed by model and text.
type VectorCache interface {
	Get(model, text string) ([]float32, bool)
	Put(model, text string, vector []float32) error
}

// CachedEmbedder wraps an Embedder so repeated ingests do not re-embed
// unchanged passages. Safe for concurrent use when the cache is.
type CachedEmbedder struct {
	inner  port.Embedder
	cache  VectorCache
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCachedEmbedder(inner port.Embedder, cache VectorCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := e.inner.ModelName()
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(model, text); ok {
			vectors[i] = vec
			e.hits.Add(1)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}
	e.misses.Add(int64(len(missing)))

	embedded, err := e.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrEmbedding, len(missing), len(embedded))
	}

	for j, vec := range embedded {
		vectors[missingIdx[j]] = vec
		if err := e.cache.Put(model, missing[j], vec); err != nil {
			return nil, fmt.Errorf("failed to cache embedding: %w", err)
		}
	}
	return vectors, nil
}

func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Hits reports how many embeddings were served from the cache.
func (e *CachedEmbedder) Hits() int64 {
	return e.hits.Load()
}

// Misses reports how many embeddings had to be computed.
func (e *CachedEmbedder) Misses() int64 {
	return e.misses.Load()
}
