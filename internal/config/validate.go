package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported embedding provider
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidDimensions indicates invalid embedding dimensions
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")

	// ErrInvalidChunkSize indicates invalid chunk size configuration
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap indicates invalid overlap configuration
	ErrInvalidOverlap = errors.New("invalid overlap")

	// ErrEmptyEndpoint indicates missing embedding endpoint
	ErrEmptyEndpoint = errors.New("empty embedding endpoint")

	// ErrEmptyModel indicates missing embedding model
	ErrEmptyModel = errors.New("empty embedding model")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidGitSettings indicates invalid git ingestion configuration
	ErrInvalidGitSettings = errors.New("invalid git settings")

	// ErrInvalidSearchSettings indicates invalid search/fusion configuration
	ErrInvalidSearchSettings = errors.New("invalid search settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateChunking(&cfg.Chunking); err != nil {
		errs = append(errs, err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}
	if err := validateGit(&cfg.Git); err != nil {
		errs = append(errs, err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if provider != "local" && provider != "mock" {
		errs = append(errs, fmt.Errorf("%w: must be 'local' or 'mock', got '%s'", ErrInvalidProvider, cfg.Provider))
	}

	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrEmptyModel))
	}

	if cfg.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}

	if provider == "local" && strings.TrimSpace(cfg.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("%w: endpoint is required for the local provider", ErrEmptyEndpoint))
	}

	if cfg.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize))
	}

	if cfg.QueueDepth <= 0 {
		errs = append(errs, fmt.Errorf("queue_depth must be positive, got %d", cfg.QueueDepth))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	// Paths can be empty - validation is lenient here.
	// The pipeline handles empty patterns gracefully.
	return nil
}

func validateChunking(cfg *ChunkingConfig) error {
	var errs []error

	if cfg.MaxLines <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_lines must be positive, got %d", ErrInvalidChunkSize, cfg.MaxLines))
	}

	if cfg.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_bytes must be positive, got %d", ErrInvalidChunkSize, cfg.MaxBytes))
	}

	if cfg.OverlapLines < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap_lines cannot be negative, got %d", ErrInvalidOverlap, cfg.OverlapLines))
	}

	if cfg.MaxLines > 0 && cfg.OverlapLines >= cfg.MaxLines {
		errs = append(errs, fmt.Errorf("%w: overlap_lines (%d) should be less than max_lines (%d)", ErrInvalidOverlap, cfg.OverlapLines, cfg.MaxLines))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		errs = append(errs, fmt.Errorf("%w: database_path is required", ErrInvalidCacheSettings))
	}

	if cfg.CacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_capacity cannot be negative, got %d", ErrInvalidCacheSettings, cfg.CacheCapacity))
	}

	if cfg.CacheMaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_max_age_days cannot be negative, got %d", ErrInvalidCacheSettings, cfg.CacheMaxAgeDays))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGit(cfg *GitConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.DefaultBranch) == "" {
		errs = append(errs, fmt.Errorf("%w: default_branch is required", ErrInvalidGitSettings))
	}

	if cfg.MaxCommitsPerSync < 0 {
		errs = append(errs, fmt.Errorf("%w: max_commits_per_sync cannot be negative, got %d", ErrInvalidGitSettings, cfg.MaxCommitsPerSync))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.RRFK <= 0 {
		errs = append(errs, fmt.Errorf("%w: rrf_k must be positive, got %d", ErrInvalidSearchSettings, cfg.RRFK))
	}

	if cfg.WeightVector < 0 || cfg.WeightFTS < 0 {
		errs = append(errs, fmt.Errorf("%w: fusion weights cannot be negative", ErrInvalidSearchSettings))
	}

	if cfg.SubQueryTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("%w: sub_query_timeout_ms must be positive, got %d", ErrInvalidSearchSettings, cfg.SubQueryTimeoutMS))
	}

	if cfg.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: default_limit must be positive, got %d", ErrInvalidSearchSettings, cfg.DefaultLimit))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
