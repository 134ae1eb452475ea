package domain

// Passage is one retrievable unit of corpus text.
type Passage struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Category string `json:"category"`
}

// SourceKey identifies a passage by document location. Two candidates
// sharing a key are the same passage for deduplication purposes.
type SourceKey struct {
	Source string
	Page   int
}

func (p Passage) Key() SourceKey {
	return SourceKey{Source: p.Source, Page: p.Page}
}

// Candidate is a raw index hit. Distance and Certainty are nil when the
// index did not report that metric for the hit.
type Candidate struct {
	Passage
	Distance  *float64
	Certainty *float64
}

// Similarity maps the reported metric into [0,1], higher meaning closer.
// Distance wins when both metrics are present; a hit with neither scores 0.
func (c Candidate) Similarity() float64 {
	if c.Distance != nil {
		return 1 - *c.Distance
	}
	if c.Certainty != nil {
		return *c.Certainty
	}
	return 0
}

type Origin string

const (
	OriginVector  Origin = "vector"
	OriginKeyword Origin = "keyword"
)

// RetrievedPassage is one ranked search result. Similarity is meaningful
// only for vector-origin results; keyword fallback hits are unscored.
type RetrievedPassage struct {
	Passage
	Similarity float64 `json:"similarity,omitempty"`
	Origin     Origin  `json:"origin"`
}
