package embed

import "fmt"

// Config contains configuration for creating an embedding provider.
type Config struct {
	// Provider specifies which embedding provider to use ("local", "openai", etc.)
	Provider string

	// Endpoint is the URL for the embedding service. The local provider does
	// not read it; it always talks to 127.0.0.1 on DefaultEmbedServerPort.
	Endpoint string

	// BinaryPath is the path to the cortex-embed binary (for local provider)
	BinaryPath string

	// APIKey for cloud providers (future)
	APIKey string

	// Model identifies the embedding model in use (e.g. "BAAI/bge-small-en-v1.5").
	Model string

	// Dimensions is the embedding vector width the configured model produces.
	Dimensions int
}

// NewProvider creates an embedding provider based on the configuration.
// Currently supports "local" and "mock" providers. Future: OpenAI, Anthropic, etc.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "local", "": // empty defaults to local
		return newLocalProvider(config.BinaryPath, config.Model, config.Dimensions)

	case "mock": // for testing
		return newMockProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: local, mock)", config.Provider)
	}
}
