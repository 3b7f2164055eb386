package config

// Default returns the canonical runtime configuration used when no file is
// present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8417",
			MaxUploadMB:    32,
			WriteTimeoutMS: 300_000,
		},
		Assistant: AssistantConfig{
			Language:        "en-US",
			AnswerTimeoutMS: 20_000,
			NavFirstRetryMS: 600,
			NavFinalRetryMS: 1500,
		},
		Summarize: SummarizeConfig{
			DefaultModel:    "gemini",
			Length:          "medium",
			Style:           "paragraph",
			Focus:           "comprehensive",
			GeminiModel:     "gemini-2.0-flash",
			GeminiAPIKeyEnv: "GEMINI_API_KEY",
			ChatBaseURL:     "",
			ChatModel:       "",
			ChatAPIKeyEnv:   "OPENAI_API_KEY",
		},
		RAG: RAGConfig{
			StorePath:  "", // resolved under the state directory when empty
			Embedder:   "genai",
			EmbedModel: "text-embedding-004",
			ChunkSize:  500,
			Overlap:    100,
			TopK:       3,
			MinScore:   0.1,
		},
	}
}
