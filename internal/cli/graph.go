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

var (
	graphDepthFlag     int
	graphTreeDepthFlag int
)

// graphCmd is the parent of the graph query subcommands (callers, deps,
// tree, modules).
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the code graph: callers, deps, tree, modules",
}

var graphCallersCmd = &cobra.Command{
	Use:   "callers <node>",
	Short: "List nodes that call the given node, up to --depth hops",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphCallers,
}

var graphDepsCmd = &cobra.Command{
	Use:   "deps <node>",
	Short: "List nodes the given node imports",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphDeps,
}

var graphTreeCmd = &cobra.Command{
	Use:   "tree <node>",
	Short: "Print the call tree rooted at the given node, up to --depth hops",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphTree,
}

var graphModulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List detected modules/crates/packages",
	RunE:  runGraphModules,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphCallersCmd, graphDepsCmd, graphTreeCmd, graphModulesCmd)

	graphCallersCmd.Flags().IntVar(&graphDepthFlag, "depth", 1, "Traversal depth")
	graphTreeCmd.Flags().IntVar(&graphTreeDepthFlag, "depth", 3, "Traversal depth")
}

func openGraphEngine(ctx context.Context) (*graph.Engine, *storage.DB, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := storage.Open(cfg.Storage, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	engine := graph.NewEngine(db.Graph)
	if err := engine.Reload(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to load graph: %w", err)
	}

	return engine, db, nil
}

func runGraphCallers(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	engine, db, err := openGraphEngine(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	hits := engine.Callers(args[0], graphDepthFlag)
	if len(hits) == 0 {
		fmt.Println("No callers found.")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%-3d %s\n", h.Depth, h.ID)
	}
	return nil
}

func runGraphDeps(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	engine, db, err := openGraphEngine(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := engine.Deps(args[0])
	if len(deps) == 0 {
		fmt.Println("No dependencies found.")
		return nil
	}
	for _, d := range deps {
		fmt.Println(d)
	}
	return nil
}

func runGraphTree(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	engine, db, err := openGraphEngine(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ids := engine.Tree(args[0], graphTreeDepthFlag)
	if len(ids) == 0 {
		fmt.Println("No call tree found.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runGraphModules(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
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

	modules, err := db.Modules.All(ctx)
	if err != nil {
		return fmt.Errorf("listing modules failed: %w", err)
	}
	if len(modules) == 0 {
		fmt.Println("No modules detected.")
		return nil
	}
	for _, m := range modules {
		fmt.Printf("%-10s %-6s %s\n", m.ProjectType, m.Language, m.Path)
	}
	return nil
}
