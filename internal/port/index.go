package port

import (
	"context"

	"shastra/internal/domain"
)

// VectorIndex is the search surface of the remote index.
type VectorIndex interface {
	// NearVector returns up to limit candidates closest to the vector,
	// best first, with whatever distance/certainty metadata the index
	// reports per hit.
	NearVector(ctx context.Context, vector []float32, limit int) ([]domain.Candidate, error)

	// Keyword runs a lexical search for the raw query text. Results
	// carry no similarity metadata.
	Keyword(ctx context.Context, query string, limit int) ([]domain.Passage, error)
}

// IndexItem is one passage with its embedding, ready for insertion.
type IndexItem struct {
	Passage domain.Passage
	Vector  []float32
}

// IndexAdmin is the management surface used by ingestion and the status
// and check commands.
type IndexAdmin interface {
	// Ready reports whether the index service is reachable and healthy.
	Ready(ctx context.Context) error

	// SchemaExists reports whether the configured class is defined.
	SchemaExists(ctx context.Context) (bool, error)

	// EnsureSchema creates the class if it does not exist.
	EnsureSchema(ctx context.Context) error

	// DropSchema removes the class and all of its objects.
	DropSchema(ctx context.Context) error

	// BatchInsert stores the items and returns how many were accepted.
	BatchInsert(ctx context.Context, items []IndexItem) (int, error)

	// Count returns the number of stored objects.
	Count(ctx context.Context) (int, error)

	// Sample returns up to limit stored passages for inspection.
	Sample(ctx context.Context, limit int) ([]domain.Passage, error)
}
