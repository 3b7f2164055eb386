package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return nil, fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("server.max_upload_mb must be > 0")
	}
	if cfg.Server.WriteTimeoutMS < 0 {
		return nil, fmt.Errorf("server.write_timeout_ms must be >= 0")
	}

	if strings.TrimSpace(cfg.Assistant.Language) == "" {
		return nil, fmt.Errorf("assistant.language must not be empty")
	}
	if cfg.Assistant.AnswerTimeoutMS <= 0 {
		return nil, fmt.Errorf("assistant.answer_timeout_ms must be > 0")
	}
	if cfg.Assistant.NavFirstRetryMS < 0 || cfg.Assistant.NavFinalRetryMS < 0 {
		return nil, fmt.Errorf("assistant navigation retry delays must be >= 0")
	}
	if cfg.Assistant.NavFinalRetryMS < cfg.Assistant.NavFirstRetryMS {
		return nil, fmt.Errorf("assistant.nav_final_retry_ms must be >= assistant.nav_first_retry_ms")
	}

	model := strings.ToLower(strings.TrimSpace(cfg.Summarize.DefaultModel))
	switch model {
	case "gemini", "chat", "mock":
	default:
		return nil, fmt.Errorf("summarize.default_model must be one of: gemini, chat, mock")
	}
	if model == "chat" && strings.TrimSpace(cfg.Summarize.ChatBaseURL) == "" {
		return nil, fmt.Errorf("summarize.chat_base_url must not be empty when summarize.default_model=chat")
	}
	if model == "gemini" && strings.TrimSpace(cfg.Summarize.GeminiAPIKeyEnv) == "" {
		return nil, fmt.Errorf("summarize.gemini_api_key_env must not be empty when summarize.default_model=gemini")
	}
	if model == "gemini" && os.Getenv(cfg.Summarize.GeminiAPIKeyEnv) == "" {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("environment variable %s is unset; summaries fall back to the mock provider", cfg.Summarize.GeminiAPIKeyEnv),
		})
	}

	embedder := strings.ToLower(strings.TrimSpace(cfg.RAG.Embedder))
	if embedder != "genai" && embedder != "hash" {
		return nil, fmt.Errorf("rag.embedder must be one of: genai, hash")
	}
	if cfg.RAG.ChunkSize <= 0 {
		return nil, fmt.Errorf("rag.chunk_size must be > 0")
	}
	if cfg.RAG.Overlap < 0 {
		return nil, fmt.Errorf("rag.overlap must be >= 0")
	}
	if cfg.RAG.Overlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("rag.overlap must be < rag.chunk_size")
	}
	if cfg.RAG.TopK <= 0 {
		return nil, fmt.Errorf("rag.top_k must be > 0")
	}
	if cfg.RAG.MinScore < 0 || cfg.RAG.MinScore > 1 {
		return nil, fmt.Errorf("rag.min_score must be within [0, 1]")
	}

	return warnings, nil
}
