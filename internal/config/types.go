// Package config resolves, parses, validates, and defaults sarathi
// configuration.
package config

// Config is the fully materialized runtime configuration used by sarathi.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Summarize SummarizeConfig `yaml:"summarize"`
	RAG       RAGConfig       `yaml:"rag"`
}

// ServerConfig controls the HTTP and WebSocket listener.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
}

// AssistantConfig controls the voice command pipeline.
type AssistantConfig struct {
	Language        string `yaml:"language"`
	AnswerTimeoutMS int    `yaml:"answer_timeout_ms"`
	NavFirstRetryMS int    `yaml:"nav_first_retry_ms"`
	NavFinalRetryMS int    `yaml:"nav_final_retry_ms"`
}

// SummarizeConfig controls completion providers and option defaults.
type SummarizeConfig struct {
	DefaultModel string `yaml:"default_model"`
	Length       string `yaml:"length"`
	Style        string `yaml:"style"`
	Focus        string `yaml:"focus"`

	GeminiModel     string `yaml:"gemini_model"`
	GeminiAPIKeyEnv string `yaml:"gemini_api_key_env"`

	ChatBaseURL   string `yaml:"chat_base_url"`
	ChatModel     string `yaml:"chat_model"`
	ChatAPIKeyEnv string `yaml:"chat_api_key_env"`
}

// RAGConfig controls document indexing and retrieval.
type RAGConfig struct {
	StorePath  string  `yaml:"store_path"`
	Embedder   string  `yaml:"embedder"` // genai | hash
	EmbedModel string  `yaml:"embed_model"`
	ChunkSize  int     `yaml:"chunk_size"`
	Overlap    int     `yaml:"overlap"`
	TopK       int     `yaml:"top_k"`
	MinScore   float64 `yaml:"min_score"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
