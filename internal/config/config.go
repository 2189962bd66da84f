// Package config loads engine configuration from .codemate/config.yml with
// environment variable overrides, following cortex's internal/config
// viper-based loader pattern.
package config

// Config is the complete engine configuration.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Git       GitConfig       `yaml:"git" mapstructure:"git"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "local" or "mock"
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	BatchSize  int    `yaml:"batch_size" mapstructure:"batch_size"`
	QueueDepth int    `yaml:"queue_depth" mapstructure:"queue_depth"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`
}

// ChunkingConfig defines the windowing behavior applied to oversized
// definitions.
type ChunkingConfig struct {
	MaxLines     int `yaml:"max_lines" mapstructure:"max_lines"`
	MaxBytes     int `yaml:"max_bytes" mapstructure:"max_bytes"`
	OverlapLines int `yaml:"overlap_lines" mapstructure:"overlap_lines"`
}

// StorageConfig points at the single SQLite file backing every store.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path" mapstructure:"database_path"`
	CacheCapacity   int    `yaml:"cache_capacity" mapstructure:"cache_capacity"`
	CacheMaxAgeDays int    `yaml:"cache_max_age_days" mapstructure:"cache_max_age_days"`
}

// GitConfig controls how the git ingestor walks history.
type GitConfig struct {
	DefaultBranch     string `yaml:"default_branch" mapstructure:"default_branch"`
	IncrementalSync   bool   `yaml:"incremental_sync" mapstructure:"incremental_sync"`
	MaxCommitsPerSync int    `yaml:"max_commits_per_sync" mapstructure:"max_commits_per_sync"`
}

// SearchConfig controls hybrid search fusion parameters.
type SearchConfig struct {
	RRFK              int     `yaml:"rrf_k" mapstructure:"rrf_k"`
	WeightVector      float64 `yaml:"weight_vector" mapstructure:"weight_vector"`
	WeightFTS         float64 `yaml:"weight_fts" mapstructure:"weight_fts"`
	SubQueryTimeoutMS int     `yaml:"sub_query_timeout_ms" mapstructure:"sub_query_timeout_ms"`
	DefaultLimit      int     `yaml:"default_limit" mapstructure:"default_limit"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Model:      "BAAI/bge-small-en-v1.5",
			Dimensions: 384,
			Endpoint:   "http://localhost:8121/embed",
			BatchSize:  32,
			QueueDepth: 1024,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.go", "**/*.rs", "**/*.py", "**/*.ts", "**/*.tsx",
				"**/*.js", "**/*.jsx", "**/*.java", "**/*.c", "**/*.h",
				"**/*.cc", "**/*.cpp", "**/*.hpp", "**/*.php", "**/*.rb",
			},
			Ignore: []string{
				"node_modules/**", "vendor/**", ".git/**", "dist/**",
				"build/**", "target/**", "__pycache__/**",
			},
		},
		Chunking: ChunkingConfig{
			MaxLines:     100,
			MaxBytes:     8192,
			OverlapLines: 10,
		},
		Storage: StorageConfig{
			DatabasePath:    ".codemate/index.db",
			CacheCapacity:   10_000,
			CacheMaxAgeDays: 0,
		},
		Git: GitConfig{
			DefaultBranch:     "main",
			IncrementalSync:   true,
			MaxCommitsPerSync: 0,
		},
		Search: SearchConfig{
			RRFK:              60,
			WeightVector:      0.5,
			WeightFTS:         0.3,
			SubQueryTimeoutMS: 5000,
			DefaultLimit:      20,
		},
	}
}
