package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shastra/internal/adapter/generation"
)

var checkPull bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the backing services are available",
	Long: `Verify that Weaviate and Ollama are reachable and that the configured
embedding and generation models are pulled.

Examples:
  shastra check
  shastra check --pull   # Pull missing models`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkPull, "pull", false, "pull missing models")
}

func runCheck(cmd *cobra.Command, args []string) error {
	return checkServices(cmd.Context(), checkPull)
}

// checkServices probes every dependency and reports per-service status.
// It returns an error when something the pipeline needs is missing.
func checkServices(ctx context.Context, pull bool) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	healthy := true

	index := buildIndexClient()
	if err := index.Ready(ctx); err != nil {
		fmt.Printf("%s Weaviate unreachable at %s: %v\n", red("x"), cfg.Weaviate.URL, err)
		healthy = false
	} else {
		fmt.Printf("%s Weaviate ready at %s\n", green("ok"), cfg.Weaviate.URL)
	}

	gen := buildGenerationClient()
	models, err := gen.ListModels(ctx)
	if err != nil {
		fmt.Printf("%s Ollama unreachable at %s: %v\n", red("x"), cfg.Ollama.URL, err)
		return fmt.Errorf("services are not available")
	}
	fmt.Printf("%s Ollama ready at %s (%d models pulled)\n", green("ok"), cfg.Ollama.URL, len(models))

	ensure := func(model, role string) {
		if generation.ModelListed(models, model) {
			fmt.Printf("%s %s model %s is available\n", green("ok"), role, model)
			return
		}
		if pull {
			fmt.Printf("Pulling %s model %s (this can take a while)...\n", role, model)
			if err := gen.Pull(ctx, model); err != nil {
				fmt.Printf("%s failed to pull %s: %v\n", red("x"), model, err)
				healthy = false
				return
			}
			fmt.Printf("%s pulled %s\n", green("ok"), model)
			return
		}
		fmt.Printf("%s %s model %s is not pulled (rerun with --pull)\n", yellow("!"), role, model)
		healthy = false
	}

	ensure(cfg.Embedding.Model, "embedding")
	resolved := generation.ResolveModel(cfg.Generation.Model)
	fmt.Printf("Generation model resolved to %s\n", resolved)
	ensure(resolved, "generation")

	if !healthy {
		return fmt.Errorf("services are not available")
	}
	return nil
}
