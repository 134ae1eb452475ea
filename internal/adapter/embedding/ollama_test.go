package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shastra/internal/domain"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *OllamaEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaEmbedder("all-minilm", server.URL, 0, 0)
}

func TestEmbedBatchOrdersByIndex(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request payload: %v", err)
		}
		if req.Model != "all-minilm" {
			t.Errorf("expected model all-minilm, got %s", req.Model)
		}
		// Deliberately out of order.
		io.WriteString(w, `{"data":[
			{"embedding":[0.2],"index":1},
			{"embedding":[0.1],"index":0}
		]}`)
	})

	vectors, err := embedder.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.2 {
		t.Errorf("vectors not reordered by index: %v", vectors)
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	embedder := NewOllamaEmbedder("all-minilm", "http://127.0.0.1:1", 0, 0)

	vectors, err := embedder.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil for empty input, got %v", vectors)
	}
}

func TestEmbedQuery(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"embedding":[0.5,0.25],"index":0}]}`)
	})

	vec, err := embedder.EmbedQuery(context.Background(), "what is dharma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("unexpected vector: %v", vec)
	}
}

func TestEmbedServerStatusError(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})

	_, err := embedder.EmbedQuery(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestEmbedAPIError(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":{"message":"model not found","type":"invalid_request"}}`)
	})

	_, err := embedder.EmbedQuery(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestEmbedUnreachable(t *testing.T) {
	embedder := NewOllamaEmbedder("all-minilm", "http://127.0.0.1:1", 0, 0)

	_, err := embedder.EmbedQuery(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestEmbedMissingVector(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"embedding":[0.1],"index":0}]}`)
	})

	_, err := embedder.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding for missing vector, got %v", err)
	}
}

func TestDimension(t *testing.T) {
	tests := []struct {
		model    string
		override int
		want     int
	}{
		{"all-minilm", 0, 384},
		{"nomic-embed-text", 0, 768},
		{"mxbai-embed-large", 0, 1024},
		{"something-new", 0, 768},
		{"all-minilm", 512, 512},
	}

	for _, tt := range tests {
		e := NewOllamaEmbedder(tt.model, "", tt.override, 0)
		if got := e.Dimension(); got != tt.want {
			t.Errorf("Dimension(%s, override=%d) = %d, want %d", tt.model, tt.override, got, tt.want)
		}
	}
}
