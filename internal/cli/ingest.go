package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"shastra/internal/adapter/embedding"
	"shastra/internal/adapter/fs"
	"shastra/internal/adapter/store"
	"shastra/internal/usecase"
)

var (
	ingestReset   bool
	ingestWorkers int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Load passage files into the vector index",
	Long: `Walk the given paths for passage files (JSONL, one record per line),
embed their contents and store them in the vector index. Files that
have not changed since the last run are skipped.

Examples:
  shastra ingest                  # Ingest ./data
  shastra ingest ./texts ./extra
  shastra ingest --reset          # Drop the class and start over`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "drop the class and forget ingested files first")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "concurrent files (0 = from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"data"}
	}

	st, err := openStateStore()
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := openEmbedder(st)
	if err != nil {
		return err
	}

	uc := buildIngest(embedder, store.NewManifest(st))
	return runIngestion(cmd.Context(), uc, embedder, roots, ingestReset)
}

func buildIngest(embedder *embedding.CachedEmbedder, manifest *store.Manifest) *usecase.IngestUseCase {
	workers := cfg.Ingest.Workers
	if ingestWorkers > 0 {
		workers = ingestWorkers
	}
	walker := fs.NewWalker(cfg.Ingest.Include, cfg.Ingest.Exclude)
	return usecase.NewIngestUseCase(walker, embedder, buildIndexClient(), manifest, workers, logger)
}

// runIngestion drives the use case over each root with a progress bar
// and prints the combined summary.
func runIngestion(ctx context.Context, uc *usecase.IngestUseCase, embedder *embedding.CachedEmbedder, roots []string, reset bool) error {
	if reset {
		fmt.Println("Dropping the class and clearing ingest history...")
		if err := uc.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
	}

	total := usecase.IngestResult{}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("invalid path %s: %w", root, err)
		}
		fmt.Printf("Scanning %s...\n", abs)

		var bar *progressbar.ProgressBar
		result, err := uc.Ingest(ctx, abs, func(p usecase.Progress) {
			if bar == nil {
				bar = newIngestBar(p.Total)
			}
			bar.Set(p.Done)
		})
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		total.FilesFound += result.FilesFound
		total.FilesIngested += result.FilesIngested
		total.FilesSkipped += result.FilesSkipped
		total.PassagesStored += result.PassagesStored
		total.Errors = append(total.Errors, result.Errors...)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files ingested: %d\n", total.FilesIngested)
	fmt.Printf("  Files skipped:  %d (unchanged)\n", total.FilesSkipped)
	fmt.Printf("  Passages:       %d\n", total.PassagesStored)
	fmt.Printf("  Cache hits:     %d\n", embedder.Hits())

	if len(total.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range total.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}

func newIngestBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}
