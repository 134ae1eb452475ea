package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"shastra/config"
	"shastra/internal/adapter/embedding"
	"shastra/internal/adapter/weaviate"
	"shastra/internal/domain"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file")
	query := flag.String("q", "", "query to test")
	topK := flag.Int("k", 10, "number of results")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -q \"query\"")
		fmt.Println("\nTests:")
		fmt.Println("  1. Embedding connectivity (model reachable, vector size)")
		fmt.Println("  2. Semantic similarity of the top hits")
		fmt.Println("  3. Paraphrase stability (related phrasings find the same passages)")
		os.Exit(1)
	}

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
	} else {
		wd, _ := os.Getwd()
		cfg, err = config.LoadFromDir(wd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	embedder := embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Ollama.URL,
		cfg.Embedding.Dimension, cfg.Embedding.BatchSize)
	index := weaviate.NewClient(cfg.Weaviate.URL, cfg.Weaviate.Class,
		time.Duration(cfg.Weaviate.TimeoutSeconds)*time.Second)

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))

	count, err := index.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Index not available: %v\n", err)
		os.Exit(1)
	}
	if count == 0 {
		fmt.Fprintln(os.Stderr, "The index is empty - run 'shastra ingest' first")
		os.Exit(1)
	}

	fmt.Printf("Passages indexed: %d\n", count)
	fmt.Printf("Model: %s\n", cfg.Embedding.Model)
	fmt.Printf("Dimension: %d\n", embedder.Dimension())
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	hits, err := search(ctx, embedder, index, *query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	if len(hits) == 0 {
		fmt.Println("No hits at all - check that ingestion used the same embedding model")
		os.Exit(1)
	}

	fmt.Printf("Top %d semantic matches:\n\n", len(hits))

	totalScore := 0.0
	for i, h := range hits {
		similarity := h.Similarity()
		totalScore += similarity

		rating := "LOW"
		if similarity > 0.7 {
			rating = "HIGH"
		} else if similarity > 0.5 {
			rating = "GOOD"
		} else if similarity > 0.3 {
			rating = "OK"
		}

		preview := strings.ReplaceAll(h.Content, "\n", " ")
		if len(preview) > 150 {
			preview = preview[:150] + "..."
		}

		fmt.Printf("%d. [%s %.3f] %s (Page %d) [%s]\n", i+1, rating, similarity, h.Source, h.Page, h.Category)
		fmt.Printf("   %s\n\n", preview)
	}

	avgScore := totalScore / float64(len(hits))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", hits[0].Similarity())

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - semantic search working well")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - may need re-ingestion with a better model")
	}

	fmt.Println()
	fmt.Println("Paraphrase stability:")
	base := sourceSet(hits)
	for _, variant := range []string{"the meaning of " + *query, "explain " + *query} {
		vhits, err := search(ctx, embedder, index, variant, *topK)
		if err != nil {
			fmt.Printf("  \"%s\": error: %v\n", variant, err)
			continue
		}
		shared := 0
		for key := range sourceSet(vhits) {
			if _, ok := base[key]; ok {
				shared++
			}
		}
		fmt.Printf("  \"%s\": %d/%d shared passages\n", variant, shared, len(vhits))
	}
}

func search(ctx context.Context, embedder *embedding.OllamaEmbedder, index *weaviate.Client, query string, k int) ([]domain.Candidate, error) {
	vec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return index.NearVector(ctx, vec, k)
}

func sourceSet(hits []domain.Candidate) map[domain.SourceKey]struct{} {
	set := make(map[domain.SourceKey]struct{}, len(hits))
	for _, h := range hits {
		set[h.Key()] = struct{}{}
	}
	return set
}
