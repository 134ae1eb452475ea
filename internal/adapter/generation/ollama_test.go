package generation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("bad request payload: %v", err)
		}
		io.WriteString(w, `{"response":"Dharma is the path of righteousness.","done":true}`)
	})

	answer, err := client.Generate(context.Background(), "gemma3:12b", "What is dharma?", DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Dharma is the path of righteousness." {
		t.Errorf("unexpected answer: %q", answer)
	}

	if got.Model != "gemma3:12b" || got.Stream {
		t.Errorf("unexpected request fields: %+v", got)
	}
	if got.Options.Temperature != 0.7 || got.Options.TopP != 0.9 || got.Options.NumPredict != 4096 {
		t.Errorf("unexpected options: %+v", got.Options)
	}
}

func TestGenerateServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "gemma3:27b", "q", DefaultParams())
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestGenerateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"model 'gemma3:27b' not found"}`)
	})

	_, err := client.Generate(context.Background(), "gemma3:27b", "q", DefaultParams())
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"models":[{"name":"gemma3:12b"},{"name":"all-minilm:latest"}]}`)
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "gemma3:12b" {
		t.Errorf("unexpected models: %v", models)
	}

	has, err := client.HasModel(context.Background(), "gemma3:12b")
	if err != nil || !has {
		t.Errorf("expected gemma3:12b present, got %v %v", has, err)
	}
	has, err = client.HasModel(context.Background(), "gemma3:27b")
	if err != nil || has {
		t.Errorf("expected gemma3:27b absent, got %v %v", has, err)
	}
	has, err = client.HasModel(context.Background(), "all-minilm")
	if err != nil || !has {
		t.Errorf("expected all-minilm to match its :latest tag, got %v %v", has, err)
	}
}

func TestChainDropsDuplicates(t *testing.T) {
	client := NewClient("", 0)

	chain := Chain(client, []string{"gemma3:12b", "gemma3:12b", "gemma2:2b", ""}, DefaultParams())
	if len(chain) != 2 {
		t.Fatalf("expected 2 generators, got %d", len(chain))
	}
	if chain[0].ModelName() != "gemma3:12b" || chain[1].ModelName() != "gemma2:2b" {
		t.Errorf("unexpected chain order: %s, %s", chain[0].ModelName(), chain[1].ModelName())
	}
}

func TestResolveModelExplicit(t *testing.T) {
	if got := ResolveModel("mistral:7b"); got != "mistral:7b" {
		t.Errorf("explicit model must pass through, got %s", got)
	}
}
