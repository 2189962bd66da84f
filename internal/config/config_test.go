package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)

	assert.Equal(t, "mock", cfg.Embedding.Provider)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
	assert.Equal(t, 1024, cfg.Embedding.QueueDepth)

	assert.Equal(t, 100, cfg.Chunking.MaxLines)
	assert.Equal(t, 8192, cfg.Chunking.MaxBytes)
	assert.Equal(t, 10, cfg.Chunking.OverlapLines)

	assert.Equal(t, ".codemate/index.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 10_000, cfg.Storage.CacheCapacity)

	assert.Equal(t, "main", cfg.Git.DefaultBranch)
	assert.True(t, cfg.Git.IncrementalSync)

	assert.Equal(t, 60, cfg.Search.RRFK)
	assert.Equal(t, 0.5, cfg.Search.WeightVector)
	assert.Equal(t, 0.3, cfg.Search.WeightFTS)

	assert.NotEmpty(t, cfg.Paths.Include)
	assert.NotEmpty(t, cfg.Paths.Ignore)

	require.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, Default().Embedding.Model, cfg.Embedding.Model)
	assert.Equal(t, Default().Search.RRFK, cfg.Search.RRFK)
}

func TestLoadConfig_LoadsFromConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".codemate")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	configYAML := `
embedding:
  provider: mock
  model: custom-model
  dimensions: 128
search:
  rrf_k: 40
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(configYAML), 0o644))

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "custom-model", cfg.Embedding.Model)
	assert.Equal(t, 128, cfg.Embedding.Dimensions)
	assert.Equal(t, 40, cfg.Search.RRFK)
	// unset fields still fall back to defaults
	assert.Equal(t, Default().Storage.DatabasePath, cfg.Storage.DatabasePath)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".codemate")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	configYAML := `
embedding:
  model: from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(configYAML), 0o644))

	t.Setenv("CODEMATE_EMBEDDING_MODEL", "from-env")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.Model)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".codemate")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("not: valid: yaml: ["), 0o644))

	_, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
}

func TestValidate_RejectsInvalidProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "bogus"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidProvider)
}

func TestValidate_RejectsNonPositiveDimensions(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Dimensions = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidDimensions)
}

func TestValidate_RejectsEmptyModel(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Model = "  "
	assert.ErrorIs(t, Validate(cfg), ErrEmptyModel)
}

func TestValidate_RejectsEmptyEndpointForLocalProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "local"
	cfg.Embedding.Endpoint = ""
	assert.ErrorIs(t, Validate(cfg), ErrEmptyEndpoint)
}

func TestValidate_AllowsEmptyEndpointForMockProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Endpoint = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidate_RejectsNonPositiveChunkSizes(t *testing.T) {
	cfg := Default()
	cfg.Chunking.MaxLines = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidChunkSize)

	cfg = Default()
	cfg.Chunking.MaxBytes = -1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidChunkSize)
}

func TestValidate_RejectsOverlapNotLessThanMaxLines(t *testing.T) {
	cfg := Default()
	cfg.Chunking.OverlapLines = cfg.Chunking.MaxLines
	assert.ErrorIs(t, Validate(cfg), ErrInvalidOverlap)
}

func TestValidate_RejectsNegativeCacheSettings(t *testing.T) {
	cfg := Default()
	cfg.Storage.CacheMaxAgeDays = -1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidCacheSettings)
}

func TestValidate_RejectsEmptyDefaultBranch(t *testing.T) {
	cfg := Default()
	cfg.Git.DefaultBranch = ""
	assert.ErrorIs(t, Validate(cfg), ErrInvalidGitSettings)
}

func TestValidate_RejectsInvalidSearchSettings(t *testing.T) {
	cfg := Default()
	cfg.Search.RRFK = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidSearchSettings)

	cfg = Default()
	cfg.Search.WeightVector = -0.1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidSearchSettings)
}

func TestValidate_ReturnsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "bogus"
	cfg.Chunking.MaxLines = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
