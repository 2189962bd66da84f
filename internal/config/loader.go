package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODEMATE_*)
// 2. Config file (.codemate/config.yml or .codemate/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codemate")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CODEMATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Embedding configuration
	v.BindEnv("embedding.provider")
	v.BindEnv("embedding.model")
	v.BindEnv("embedding.dimensions")
	v.BindEnv("embedding.endpoint")
	v.BindEnv("embedding.batch_size")
	v.BindEnv("embedding.queue_depth")

	// Chunking configuration
	v.BindEnv("chunking.max_lines")
	v.BindEnv("chunking.max_bytes")
	v.BindEnv("chunking.overlap_lines")

	// Storage configuration
	v.BindEnv("storage.database_path")
	v.BindEnv("storage.cache_capacity")
	v.BindEnv("storage.cache_max_age_days")

	// Git configuration
	v.BindEnv("git.default_branch")
	v.BindEnv("git.incremental_sync")
	v.BindEnv("git.max_commits_per_sync")

	// Search configuration
	v.BindEnv("search.rrf_k")
	v.BindEnv("search.weight_vector")
	v.BindEnv("search.weight_fts")
	v.BindEnv("search.sub_query_timeout_ms")
	v.BindEnv("search.default_limit")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.model", defaults.Embedding.Model)
	v.SetDefault("embedding.dimensions", defaults.Embedding.Dimensions)
	v.SetDefault("embedding.endpoint", defaults.Embedding.Endpoint)
	v.SetDefault("embedding.batch_size", defaults.Embedding.BatchSize)
	v.SetDefault("embedding.queue_depth", defaults.Embedding.QueueDepth)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("chunking.max_lines", defaults.Chunking.MaxLines)
	v.SetDefault("chunking.max_bytes", defaults.Chunking.MaxBytes)
	v.SetDefault("chunking.overlap_lines", defaults.Chunking.OverlapLines)

	v.SetDefault("storage.database_path", defaults.Storage.DatabasePath)
	v.SetDefault("storage.cache_capacity", defaults.Storage.CacheCapacity)
	v.SetDefault("storage.cache_max_age_days", defaults.Storage.CacheMaxAgeDays)

	v.SetDefault("git.default_branch", defaults.Git.DefaultBranch)
	v.SetDefault("git.incremental_sync", defaults.Git.IncrementalSync)
	v.SetDefault("git.max_commits_per_sync", defaults.Git.MaxCommitsPerSync)

	v.SetDefault("search.rrf_k", defaults.Search.RRFK)
	v.SetDefault("search.weight_vector", defaults.Search.WeightVector)
	v.SetDefault("search.weight_fts", defaults.Search.WeightFTS)
	v.SetDefault("search.sub_query_timeout_ms", defaults.Search.SubQueryTimeoutMS)
	v.SetDefault("search.default_limit", defaults.Search.DefaultLimit)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
