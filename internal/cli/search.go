package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"shastra/internal/domain"
	"shastra/internal/usecase"
)

var (
	searchQuery  string
	searchLimit  int
	searchMinSim float64
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed passages",
	Long: `Search the vector index for passages relevant to a query. The number
of sources adapts to the query's complexity unless --sources is given.

Examples:
  shastra search -q "what is dharma"
  shastra search -q "compare karma and dharma" --sources 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "sources", "n", 0, "number of sources (0 = adaptive)")
	searchCmd.Flags().Float64Var(&searchMinSim, "min-similarity", 0, "similarity threshold override (0 = from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	st, err := openStateStore()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := openEmbedder(st)
	if err != nil {
		return err
	}

	search := buildSearch(embedder)
	results, err := search.Search(cmd.Context(), searchQuery, usecase.SearchOptions{
		Limit:         searchLimit,
		MinSimilarity: searchMinSim,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		fmt.Printf("--- [%d] %s ---\n", i+1, describeHit(r))
		fmt.Println(snippet(r.Content, 500))
		fmt.Println()
	}
	return nil
}

func describeHit(r domain.RetrievedPassage) string {
	if r.Origin == domain.OriginKeyword {
		return fmt.Sprintf("%s (Page %d) [%s] keyword match", r.Source, r.Page, r.Category)
	}
	return fmt.Sprintf("%s (Page %d) [%s] %.0f%% match", r.Source, r.Page, r.Category, r.Similarity*100)
}

func snippet(text string, max int) string {
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
