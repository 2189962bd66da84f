package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/graph"
	"github.com/mvp-joe/codemate/internal/storage"
)

var historyKindFlag string

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history <source> <target>",
	Short: "Show the creation/deletion history of an edge between two nodes",
	Long: `History prints the append-only event log for one (source, target, kind)
edge: every commit that created or deleted it, in chronological order.

Node IDs use the graph's typed prefixes, e.g. "chunk:<hash>", "file:<path>".

Example:
  codemate history chunk:abc123 file:internal/auth/token.go --kind CONTAINS
`,
	Args: cobra.ExactArgs(2),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyKindFlag, "kind", string(graph.EdgeCalls), "Edge kind (CALLS, IMPORTS, EXTENDS, IMPLEMENTS, REFERENCES, CONTAINS, AUTHORED, MODIFIED, SIMILAR_TO)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	source, target := args[0], args[1]

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := storage.Open(cfg.Storage, cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	events, err := db.Graph.EdgeHistory(ctx, source, target, graph.EdgeKind(historyKindFlag))
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No history found for that edge.")
		return nil
	}

	for _, e := range events {
		fmt.Printf("%s  %-7s  %s  %s\n", e.AuthoredAt.Format("2006-01-02 15:04"), e.Event, e.CommitHash, e.AuthorEmail)
	}

	return nil
}
