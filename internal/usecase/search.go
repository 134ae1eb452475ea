package usecase

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"shastra/internal/adapter/analyzer"
	"shastra/internal/domain"
	"shastra/internal/port"
)

// SearchOptions controls a single retrieval call. Zero values mean
// "decide for me": Limit 0 lets the complexity scorer pick the source
// count, MinSimilarity 0 uses the configured threshold.
type SearchOptions struct {
	Limit         int
	MinSimilarity float64
}

// SearchUseCase retrieves ranked passages for a query.
type SearchUseCase struct {
	embedder      port.Embedder
	index         port.VectorIndex
	scorer        *analyzer.ComplexityScorer
	minSimilarity float64
	overFetch     int
	logger        *zap.Logger
}

// NewSearchUseCase creates a new search use case.
func NewSearchUseCase(
	embedder port.Embedder,
	index port.VectorIndex,
	scorer *analyzer.ComplexityScorer,
	minSimilarity float64,
	overFetch int,
	logger *zap.Logger,
) *SearchUseCase {
	if overFetch < 1 {
		overFetch = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchUseCase{
		embedder:      embedder,
		index:         index,
		scorer:        scorer,
		minSimilarity: minSimilarity,
		overFetch:     overFetch,
		logger:        logger,
	}
}

// Search embeds the query, fetches candidates from the vector index and
// returns them filtered, deduplicated and ranked by similarity. When the
// vector index returns nothing at all it falls back to keyword search.
func (u *SearchUseCase) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.RetrievedPassage, error) {
	target := u.targetFor(query, opts.Limit)
	minSim := u.minSimilarity
	if opts.MinSimilarity > 0 {
		minSim = opts.MinSimilarity
	}

	vector, err := u.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &domain.RetrievalError{Stage: domain.StageEmbed, Err: err}
	}

	candidates, err := u.index.NearVector(ctx, vector, target*u.overFetch)
	if err != nil {
		return nil, &domain.RetrievalError{Stage: domain.StageVector, Err: err}
	}

	if len(candidates) == 0 {
		u.logger.Debug("vector search returned nothing, trying keyword fallback",
			zap.String("query", query))
		return u.keywordFallback(ctx, query, target)
	}

	ranked := rankCandidates(candidates, minSim, target)
	u.logger.Debug("retrieval complete",
		zap.String("query", query),
		zap.Int("target", target),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}

// targetFor resolves the number of sources to retrieve. An explicit
// limit wins over the adaptive score but is clamped to the allowed range.
func (u *SearchUseCase) targetFor(query string, limit int) int {
	if limit != 0 {
		return u.scorer.Clamp(limit)
	}
	return u.scorer.TargetSources(query)
}

// keywordFallback runs a BM25 search when vector retrieval found no
// candidates. Keyword hits carry no similarity score.
func (u *SearchUseCase) keywordFallback(ctx context.Context, query string, target int) ([]domain.RetrievedPassage, error) {
	passages, err := u.index.Keyword(ctx, query, target)
	if err != nil {
		return nil, &domain.RetrievalError{Stage: domain.StageKeyword, Err: err}
	}
	if len(passages) > target {
		passages = passages[:target]
	}
	results := make([]domain.RetrievedPassage, 0, len(passages))
	for _, p := range passages {
		results = append(results, domain.RetrievedPassage{
			Passage: p,
			Origin:  domain.OriginKeyword,
		})
	}
	return results, nil
}

// rankCandidates filters candidates below the similarity threshold,
// drops repeats of the same source and page, sorts the survivors by
// descending similarity and truncates to the target count. Every
// candidate is inspected: a weak hit never hides a stronger one later
// in the list.
func rankCandidates(candidates []domain.Candidate, minSimilarity float64, target int) []domain.RetrievedPassage {
	seen := make(map[domain.SourceKey]struct{}, len(candidates))
	results := make([]domain.RetrievedPassage, 0, len(candidates))
	for _, c := range candidates {
		sim := c.Similarity()
		if sim < minSimilarity {
			continue
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, domain.RetrievedPassage{
			Passage:    c.Passage,
			Similarity: sim,
			Origin:     domain.OriginVector,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > target {
		results = results[:target]
	}
	return results
}

// Describe reports how the scorer would treat a query. Useful for
// debugging retrieval behaviour without hitting any backend.
func (u *SearchUseCase) Describe(query string) string {
	score := u.scorer.Score(query)
	target := u.scorer.TargetSources(query)
	return fmt.Sprintf("complexity score %d, %d sources", score, target)
}
