package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes for external collaborators. Adapters wrap these so
// callers can classify with errors.Is without importing adapter packages.
var (
	ErrEmbedding = errors.New("embedding provider failure")
	ErrIndex     = errors.New("vector index failure")
)

// Stages at which a search call can fail.
const (
	StageEmbed   = "embed"
	StageVector  = "vector search"
	StageKeyword = "keyword search"
)

// RetrievalError carries a collaborator failure out of a search call with
// the underlying cause preserved for errors.Is and errors.As.
type RetrievalError struct {
	Stage string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed during %s: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError reports that every model in the fallback chain failed.
// Err holds the last model's failure.
type GenerationError struct {
	Models []string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("all generation models failed (%s): %v", strings.Join(e.Models, ", "), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
