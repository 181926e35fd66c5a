package config

import (
	"fmt"
	"os"
)

func Load() (*Config, error) {
	journalPath := os.Getenv("NIGHTJAR_DB")
	if journalPath == "" {
		journalPath = "nightjar.db"
	}

	graphsPath := os.Getenv("NIGHTJAR_GRAPHS")
	if graphsPath == "" {
		graphsPath = "graphs"
	}

	timezone := os.Getenv("TZ")
	if timezone == "" {
		timezone = "UTC"
	}

	llmConfig, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	embedderConfig := loadEmbedderConfig()

	return &Config{
		JournalPath: journalPath,
		GraphsPath:  graphsPath,
		PromptPath:  os.Getenv("NIGHTJAR_PROMPT"),
		DomainFile:  os.Getenv("NIGHTJAR_DOMAIN"),
		Timezone:    timezone,
		IndexCron:   os.Getenv("NIGHTJAR_INDEX_CRON"),
		LLM:         llmConfig,
		Embedder:    embedderConfig,
	}, nil
}

func loadEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Provider: os.Getenv("EMBEDDER_PROVIDER"),
		BaseURL:  os.Getenv("EMBEDDER_URL"),
		Model:    os.Getenv("EMBEDDER_MODEL"),
	}
}

func loadLLMConfig() (LLMConfig, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "claude"
	}

	apiKey, err := getAPIKey(provider)
	if err != nil {
		return LLMConfig{}, err
	}

	return LLMConfig{
		Provider: provider,
		APIKey:   apiKey,
		Model:    os.Getenv("LLM_MODEL"),
		BaseURL:  os.Getenv("LLM_BASE_URL"),
	}, nil
}

func getAPIKey(provider string) (string, error) {
	envKey := os.Getenv("LLM_API_KEY")
	if envKey != "" {
		return envKey, nil
	}

	switch provider {
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return key, nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		return key, nil
	case "ollama":
		// Ollama doesn't need an API key
		return "ollama", nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}
}
