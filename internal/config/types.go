package config

type Config struct {
	JournalPath string
	GraphsPath  string
	PromptPath  string
	DomainFile  string
	Timezone    string
	IndexCron   string
	LLM         LLMConfig
	Embedder    EmbedderConfig
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

type EmbedderConfig struct {
	Provider string
	BaseURL  string
	Model    string
}
