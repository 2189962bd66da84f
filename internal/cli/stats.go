package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/storage"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index counts (chunks, locations, graph nodes/edges, modules)",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	tables := []struct {
		label string
		query string
	}{
		{"Chunks", "SELECT COUNT(*) FROM chunks"},
		{"Locations", "SELECT COUNT(*) FROM locations"},
		{"Graph nodes", "SELECT COUNT(*) FROM graph_nodes"},
		{"Graph edges", "SELECT COUNT(*) FROM graph_edges"},
		{"Modules", "SELECT COUNT(*) FROM modules"},
	}

	fmt.Printf("Index: %s\n\n", cfg.Storage.DatabasePath)
	for _, t := range tables {
		var count int
		if err := db.Conn.QueryRow(t.query).Scan(&count); err != nil {
			return fmt.Errorf("counting %s: %w", t.label, err)
		}
		fmt.Printf("  %-14s %s\n", t.label+":", formatNumber(count))
	}

	return nil
}

// formatNumber renders n with thousands separators (e.g. 12345 -> "12,345").
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
