package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadMB = 0 }, wantErr: "max_upload_mb"},
		{name: "empty language", mutate: func(c *Config) { c.Assistant.Language = "" }, wantErr: "assistant.language"},
		{name: "zero answer timeout", mutate: func(c *Config) { c.Assistant.AnswerTimeoutMS = 0 }, wantErr: "answer_timeout"},
		{name: "final retry before first", mutate: func(c *Config) {
			c.Assistant.NavFirstRetryMS = 2000
			c.Assistant.NavFinalRetryMS = 500
		}, wantErr: "nav_final_retry_ms"},
		{name: "unknown default model", mutate: func(c *Config) { c.Summarize.DefaultModel = "bard" }, wantErr: "default_model"},
		{name: "chat without base url", mutate: func(c *Config) {
			c.Summarize.DefaultModel = "chat"
			c.Summarize.ChatBaseURL = ""
		}, wantErr: "chat_base_url"},
		{name: "unknown embedder", mutate: func(c *Config) { c.RAG.Embedder = "pinecone" }, wantErr: "rag.embedder"},
		{name: "zero chunk size", mutate: func(c *Config) { c.RAG.ChunkSize = 0 }, wantErr: "chunk_size"},
		{name: "overlap exceeds chunk size", mutate: func(c *Config) {
			c.RAG.ChunkSize = 100
			c.RAG.Overlap = 100
		}, wantErr: "rag.overlap"},
		{name: "zero top k", mutate: func(c *Config) { c.RAG.TopK = 0 }, wantErr: "top_k"},
		{name: "min score out of range", mutate: func(c *Config) { c.RAG.MinScore = 1.5 }, wantErr: "min_score"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	require.Contains(t, warnings[0].Message, "GEMINI_API_KEY")
}

func TestValidateDefaultsAreValid(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}
