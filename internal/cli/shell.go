package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shastra/internal/adapter/store"
	"shastra/internal/usecase"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive question session",
	Long: `Start an interactive session. Anything you type is treated as a
question unless it is one of the shell commands.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
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
	ingestUC := buildIngest(embedder, store.NewManifest(st))

	printShellHelp()

	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)
	sources := 0
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "help":
			printShellHelp()
		case line == "check":
			if err := checkServices(ctx, false); err != nil {
				color.Red("%v", err)
			}
		case line == "status":
			if err := printStatus(ctx); err != nil {
				color.Red("%v", err)
			}
		case line == "ingest":
			if err := runIngestion(ctx, ingestUC, embedder, []string{"data"}, false); err != nil {
				color.Red("%v", err)
			}
		case strings.HasPrefix(line, "sources"):
			sources = parseSources(line, sources)
		default:
			result, err := askUC.Ask(ctx, line, usecase.SearchOptions{Limit: sources})
			if err != nil {
				color.Red("%v", err)
				continue
			}
			printAnswer(result)
		}
	}
	return scanner.Err()
}

func parseSources(line string, current int) int {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		fmt.Println("Usage: sources N")
		return current
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 || n > cfg.Retrieve.MaxSources {
		fmt.Printf("Sources must be between 1 and %d (0 returns to adaptive).\n", cfg.Retrieve.MaxSources)
		return current
	}
	if n == 0 {
		fmt.Println("Sources returned to adaptive.")
	} else {
		fmt.Printf("Using %d sources.\n", n)
	}
	return n
}

func printShellHelp() {
	fmt.Println("Ask a question, or use one of:")
	fmt.Println("  sources N   use N sources for following questions (0 = adaptive)")
	fmt.Println("  ingest      load passage files from ./data")
	fmt.Println("  check       verify backing services")
	fmt.Println("  status      show what the index holds")
	fmt.Println("  quit        exit")
}
