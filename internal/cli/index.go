package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/embed"
	"github.com/mvp-joe/codemate/internal/extract"
	"github.com/mvp-joe/codemate/internal/gitingest"
	"github.com/mvp-joe/codemate/internal/ingest"
	"github.com/mvp-joe/codemate/internal/pipeline"
	"github.com/mvp-joe/codemate/internal/storage"
)

var (
	quietFlag  bool
	branchFlag string
)

// indexCmd represents the index command.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the repository's git history for hybrid and graph search",
	Long: `Index walks a branch's commit history not yet covered by a prior run,
chunks every changed file's definitions, embeds them, and wires the
result into the code graph with git-derived attribution. Without
--branch, the configured default branch (git.default_branch) is indexed.

Examples:
  # Index the configured default branch
  codemate index

  # Index a specific branch
  codemate index --branch feature/foo

  # Index with progress bars disabled
  codemate index --quiet
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and print only a one-line summary")
	indexCmd.Flags().StringVarP(&branchFlag, "branch", "b", "", "Branch to index (defaults to the configured default branch)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling sync...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	backend, err := gitingest.Open(rootDir)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	repoURI, err := backend.RemoteURL(ctx)
	if err != nil || repoURI == "" {
		repoURI = rootDir
	}

	branch := branchFlag
	if branch == "" {
		branch = cfg.Git.DefaultBranch
	}

	if !quietFlag {
		fmt.Printf("Opening index at %s...\n", cfg.Storage.DatabasePath)
	}
	db, err := storage.Open(cfg.Storage, cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	embedProvider, err := embed.NewProvider(embed.Config{
		Provider:   cfg.Embedding.Provider,
		Endpoint:   cfg.Embedding.Endpoint,
		BinaryPath: "",
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer embedProvider.Close()

	if !quietFlag {
		fmt.Println("Initializing embedding provider...")
	}
	if err := embedProvider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	registry := extract.DefaultRegistry()
	pl := pipeline.New(registry, cfg.Chunking)
	progress := NewCLIProgressReporter(quietFlag)
	syncer := ingest.New(backend, db, pl, embedProvider, *cfg, progress)

	stats, err := syncer.Sync(ctx, repoURI, branch, cfg.Git.DefaultBranch)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("sync cancelled")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	if quietFlag {
		fmt.Printf("Sync complete: %d commits, %d chunks in %.1fs\n",
			stats.CommitsWalked, stats.ChunksWritten, stats.ElapsedSeconds)
	}

	return nil
}
