package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the vector index holds",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return printStatus(cmd.Context())
}

func printStatus(ctx context.Context) error {
	index := buildIndexClient()

	exists, err := index.SchemaExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		fmt.Printf("Class %s does not exist yet. Run 'shastra ingest' first.\n", index.Class())
		return nil
	}

	count, err := index.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count objects: %w", err)
	}

	fmt.Printf("Class:    %s\n", index.Class())
	fmt.Printf("Passages: %d\n", count)
	if count == 0 {
		fmt.Println("The index is empty. Run 'shastra ingest' first.")
		return nil
	}

	samples, err := index.Sample(ctx, 3)
	if err != nil {
		return fmt.Errorf("failed to sample objects: %w", err)
	}
	if len(samples) > 0 {
		fmt.Println("\nSample passages:")
		for _, p := range samples {
			fmt.Printf("  - %s (Page %d) [%s] %s\n", p.Source, p.Page, p.Category, snippet(p.Content, 80))
		}
	}
	return nil
}
