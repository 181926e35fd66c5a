package embedder

import (
	"fmt"

	"github.com/nightjar-app/nightjar/internal/graph"
)

type Config struct {
	Provider string
	BaseURL  string
	Model    string
}

// New returns nil (no semantic vectors, keyword fallback) when no provider
// is configured.
func New(cfg Config) (graph.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return newOllama(baseURL, model), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedder provider: %s", cfg.Provider)
	}
}
