package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shastra/internal/domain"
	"shastra/internal/usecase"
)

var (
	askQuery   string
	askSources int
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question and generate an answer",
	Long: `Retrieve relevant passages and generate an answer with the configured
model chain. When no passage clears the similarity threshold the model
answers from general knowledge and says so.

Examples:
  shastra ask -q "what is dharma"
  shastra ask -q "compare karma in the gita and the puranas" --sources 10`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askSources, "sources", "n", 0, "number of sources (0 = adaptive)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	st, err := openStateStore()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := openEmbedder(st)
	if err != nil {
		return err
	}

	askUC := usecase.NewAskUseCase(buildSearch(embedder), buildGenerators(), logger)
	result, err := askUC.Ask(cmd.Context(), askQuery, usecase.SearchOptions{Limit: askSources})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(result)
	return nil
}

func printAnswer(result *usecase.AskResult) {
	if !result.Grounded {
		color.Yellow("No relevant sources found. Answering from general knowledge.")
	} else {
		fmt.Printf("Found %d relevant sources:\n", len(result.Sources))
		for _, g := range result.Groups {
			fmt.Printf("\n%s sources:\n", g.Category)
			for _, p := range g.Passages {
				if p.Origin == domain.OriginKeyword {
					fmt.Printf("  - %s (Page %d), keyword match\n", p.Source, p.Page)
				} else {
					fmt.Printf("  - %s (Page %d), %.0f%% match\n", p.Source, p.Page, p.Similarity*100)
				}
			}
		}
	}

	fmt.Println()
	fmt.Println(result.Answer)
	fmt.Printf("\n[answered by %s]\n", result.Model)
}
