package cli

import (
	"fmt"
	"time"

	"shastra/config"
	"shastra/internal/adapter/analyzer"
	"shastra/internal/adapter/embedding"
	"shastra/internal/adapter/generation"
	"shastra/internal/adapter/store"
	"shastra/internal/adapter/weaviate"
	"shastra/internal/port"
	"shastra/internal/usecase"
)

// The commands share one way of assembling the pipeline from config.

func buildIndexClient() *weaviate.Client {
	return weaviate.NewClient(cfg.Weaviate.URL, cfg.Weaviate.Class,
		time.Duration(cfg.Weaviate.TimeoutSeconds)*time.Second)
}

func buildGenerationClient() *generation.Client {
	return generation.NewClient(cfg.Ollama.URL,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second)
}

// openStateStore opens the local bbolt file holding the embedding cache
// and the ingest manifest. The caller owns the returned store.
func openStateStore() (*store.Store, error) {
	path := cfg.Embedding.CachePath
	if err := config.EnsureStateDir(path); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return st, nil
}

// openEmbedder builds the caching embedder over the given state store.
func openEmbedder(st *store.Store) (*embedding.CachedEmbedder, error) {
	cache, err := store.NewEmbedCache(st, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding cache: %w", err)
	}
	base := embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Ollama.URL,
		cfg.Embedding.Dimension, cfg.Embedding.BatchSize)
	return embedding.NewCachedEmbedder(base, cache), nil
}

func buildSearch(embedder port.Embedder) *usecase.SearchUseCase {
	scorer := analyzer.NewComplexityScorer(cfg.Retrieve.DefaultSources, cfg.Retrieve.MaxSources)
	return usecase.NewSearchUseCase(embedder, buildIndexClient(), scorer,
		cfg.Retrieve.MinSimilarity, cfg.Retrieve.OverfetchMultiplier, logger)
}

// buildGenerators resolves the generation model once and returns the
// ordered fallback chain.
func buildGenerators() []port.Generator {
	resolved := generation.ResolveModel(cfg.Generation.Model)
	models := append([]string{resolved}, cfg.Generation.FallbackModels...)
	params := generation.Params{
		Temperature: cfg.Generation.Temperature,
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxTokens,
	}
	return generation.Chain(buildGenerationClient(), models, params)
}
