package cmd

import (
	"fmt"
	"os"

	"github.com/libroteca/libroteca/internal/config"
	"github.com/libroteca/libroteca/internal/embeddings"
	"github.com/libroteca/libroteca/internal/llm"
)

// loadConfig reads and validates the configuration file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (run `libroteca init` to regenerate it): %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig builds the embedder named by the config,
// falling back to the chat provider when no embedding provider is set.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		envVar := config.APIKeyEnvVar(config.ProviderOpenAI)
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			return nil, fmt.Errorf("%s is not set", envVar)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, model), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// createLLMProviderFromConfig builds the chat completion provider.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}
