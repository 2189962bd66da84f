package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/embed"
	"github.com/mvp-joe/codemate/internal/gitingest"
	"github.com/mvp-joe/codemate/internal/querydsl"
	"github.com/mvp-joe/codemate/internal/search"
	"github.com/mvp-joe/codemate/internal/storage"
)

var searchLimitFlag int

// searchCmd represents the search command.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid search over the indexed repository",
	Long: `Search runs the query-DSL grammar ("lang:go,rust author:ada@example.com
handles token refresh") through a fused FTS + vector search and prints
the ranked, hydrated results.

Examples:
  codemate search "token refresh"
  codemate search "lang:go handles retries"
  codemate search "path:internal/** after:2026-01-01 parses config"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 0, "Maximum number of results (defaults to the configured limit)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	input := strings.Join(args, " ")

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	q, err := querydsl.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	db, err := storage.Open(cfg.Storage, cfg.Embedding.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	embedProvider, err := embed.NewProvider(embed.Config{
		Provider:   cfg.Embedding.Provider,
		Endpoint:   cfg.Embedding.Endpoint,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer embedProvider.Close()

	if err := embedProvider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	backend, err := gitingest.Open(rootDir)
	repoURI := rootDir
	if err == nil {
		if remote, rerr := backend.RemoteURL(ctx); rerr == nil && remote != "" {
			repoURI = remote
		}
	}

	opts, err := toSearchOptions(q, cfg.Search.DefaultLimit)
	if err != nil {
		return fmt.Errorf("invalid query filter: %w", err)
	}
	if searchLimitFlag > 0 {
		opts.Limit = searchLimitFlag
	}

	engine := search.New(db.FTS, db.Vectors, db.Chunks, db.Locations, embedProvider, cfg.Search, nil)
	results, err := engine.Search(ctx, repoURI, q.Freetext, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, r := range results {
		symbol := r.Chunk.SymbolName
		if symbol == "" {
			symbol = string(r.Chunk.Kind)
		}
		fmt.Printf("%2d. %.3f  %s:%d-%d  %s\n",
			i+1, r.Score, r.Location.FilePath, r.Location.LineRange.Start, r.Location.LineRange.End, symbol)
		if r.Chunk.Signature != "" {
			fmt.Printf("      %s\n", r.Chunk.Signature)
		}
	}

	return nil
}

// toSearchOptions converts a parsed query-DSL Query into search.Options,
// compiling glob-bearing filter values (file/path/in) via querydsl and
// adapting them to search's narrower GlobMatcher.
func toSearchOptions(q querydsl.Query, defaultLimit int) (search.Options, error) {
	filters := search.Filters{
		Languages: q.Values(querydsl.KeyLang),
		Authors:   q.Values(querydsl.KeyAuthor),
	}

	fileGlobs, err := compileGlobs(q.Values(querydsl.KeyFile))
	if err != nil {
		return search.Options{}, err
	}
	filters.FileGlobs = fileGlobs

	pathGlobs, err := compileGlobs(q.Values(querydsl.KeyPath))
	if err != nil {
		return search.Options{}, err
	}
	filters.PathGlobs = pathGlobs

	inGlobs, err := compileGlobs(q.Values(querydsl.KeyIn))
	if err != nil {
		return search.Options{}, err
	}
	filters.InGlobs = inGlobs

	if after := q.Values(querydsl.KeyAfter); len(after) > 0 {
		filters.After = &after[0]
	}
	if before := q.Values(querydsl.KeyBefore); len(before) > 0 {
		filters.Before = &before[0]
	}

	limit := defaultLimit
	if lims := q.Values(querydsl.KeyLimit); len(lims) > 0 {
		if n, err := strconv.Atoi(lims[0]); err == nil && n > 0 {
			limit = n
		}
	}

	return search.Options{Limit: limit, Filters: filters}, nil
}

func compileGlobs(values []string) ([]search.GlobMatcher, error) {
	if len(values) == 0 {
		return nil, nil
	}
	globs, err := querydsl.CompileGlobs(values)
	if err != nil {
		return nil, err
	}
	matchers := make([]search.GlobMatcher, len(globs))
	for i, g := range globs {
		matchers[i] = g
	}
	return matchers, nil
}
