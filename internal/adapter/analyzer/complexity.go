package analyzer

import "strings"

// Keyword tables driving adaptive retrieval sizing. Matching is by
// substring on the lowercased query; each entry contributes at most once
// however often it recurs in the query.
var (
	complexKeywords = []string{
		"compare", "comparison", "different", "various", "all", "complete",
		"comprehensive", "detailed", "explain", "describe", "overview",
		"history", "evolution", "development", "significance", "importance",
		"relationship", "connection", "between", "among", "multiple",
	}

	broadKeywords = []string{
		"dharma", "karma", "moksha", "liberation", "enlightenment",
		"consciousness", "divine", "god", "brahman", "atman", "soul",
		"meditation", "yoga", "devotion", "bhakti", "wisdom", "knowledge",
	}

	specificKeywords = []string{
		"what is", "who is", "when", "where", "definition", "meaning",
		"quote", "verse", "chapter", "specific", "particular",
	}
)

// ComplexityScorer sizes retrieval to the linguistic shape of a query.
// Comparative and broad-coverage phrasing pulls more sources, narrow
// lookup phrasing pulls fewer.
type ComplexityScorer struct {
	defaultSources int
	maxSources     int
}

func NewComplexityScorer(defaultSources, maxSources int) *ComplexityScorer {
	return &ComplexityScorer{
		defaultSources: defaultSources,
		maxSources:     maxSources,
	}
}

// Score accumulates +2 per complex keyword, +1 per broad topic keyword
// and -1 per specific keyword present in the query.
func (s *ComplexityScorer) Score(query string) int {
	q := strings.ToLower(query)
	score := 0
	for _, kw := range complexKeywords {
		if strings.Contains(q, kw) {
			score += 2
		}
	}
	for _, kw := range broadKeywords {
		if strings.Contains(q, kw) {
			score++
		}
	}
	for _, kw := range specificKeywords {
		if strings.Contains(q, kw) {
			score--
		}
	}
	return score
}

// TargetSources maps the query's complexity score to a retrieval count.
func (s *ComplexityScorer) TargetSources(query string) int {
	score := s.Score(query)
	switch {
	case score >= 4:
		return min(s.maxSources, 12)
	case score >= 2:
		return min(s.maxSources, 8)
	case score >= 0:
		return s.defaultSources
	default:
		return 3
	}
}

// Clamp bounds a caller-supplied source count to [1, maxSources].
func (s *ComplexityScorer) Clamp(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > s.maxSources {
		return s.maxSources
	}
	return limit
}
