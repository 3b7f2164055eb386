package summarize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedProvider struct {
	name   string
	output string
	err    error
}

func (f fixedProvider) Name() string { return f.name }

func (f fixedProvider) Complete(context.Context, string) (string, error) {
	return f.output, f.err
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt("the document body", Options{})

	require.Contains(t, prompt, "moderate length (approximately 400-600 words)")
	require.Contains(t, prompt, "well-structured paragraphs")
	require.Contains(t, prompt, "all key aspects")
	require.Contains(t, prompt, "Output in English.")
	require.Contains(t, prompt, "the document body")
}

func TestBuildPromptLanguageAndStyle(t *testing.T) {
	prompt := BuildPrompt("text", Options{Length: "short", Style: "bullet", Focus: "results", Language: "hi"})

	require.Contains(t, prompt, "concise (approximately 150-250 words)")
	require.Contains(t, prompt, "bullet")
	require.Contains(t, prompt, "outcomes, achievements, findings")
	require.Contains(t, prompt, "ENTIRE summary in Hindi")
	require.NotContains(t, prompt, "Output in English.")
}

func TestBuildAnswerPromptWithHistory(t *testing.T) {
	prompt := BuildAnswerPrompt("what changed?", "chunk one\nchunk two", []Message{
		{Role: "user", Content: "summarize the paper"},
		{Role: "assistant", Content: "it studies retention"},
	})

	require.Contains(t, prompt, "chunk one")
	require.Contains(t, prompt, "USER: summarize the paper")
	require.Contains(t, prompt, "ASSISTANT: it studies retention")
	require.Contains(t, prompt, "QUESTION: what changed?")
}

func TestCleanFixesModelArtifacts(t *testing.T) {
	raw := "```markdown\n#Summary\r\n\r\n\r\n\r\nSome   **  bold  ** text   \n\n\n\nmore\n```"
	got := Clean(raw, Options{})

	require.Equal(t, "# Summary\n\nSome **bold** text\n\nmore", got)
}

func TestCleanBulletStyle(t *testing.T) {
	raw := "• first point\n* second point\n-\n"
	got := Clean(raw, Options{Style: "bullet"})

	require.Contains(t, got, "- first point")
	require.Contains(t, got, "- second point")
	require.NotContains(t, got, "•")
}

func TestServiceSummarize(t *testing.T) {
	svc := NewService(nil, nil, fixedProvider{name: "gemini", output: "#Heading\nA fine summary."})

	result, err := svc.Summarize(context.Background(), "one two three four", "gemini", Options{})
	require.NoError(t, err)
	require.Equal(t, "gemini", result.Model)
	require.Equal(t, 4, result.WordCount)
	require.Equal(t, "# Heading\nA fine summary.", result.Summary)
}

func TestServiceUnknownModelFallsBack(t *testing.T) {
	svc := NewService(nil, MockProvider{}, fixedProvider{name: "gemini", output: "x"})

	result, err := svc.Summarize(context.Background(), "text body here", "claude", Options{})
	require.NoError(t, err)
	require.Equal(t, "mock", result.Model)
	require.Contains(t, result.Summary, "development-mode summary")
}

func TestServiceUnknownModelNoFallback(t *testing.T) {
	svc := NewService(nil, nil, fixedProvider{name: "gemini", output: "x"})

	_, err := svc.Summarize(context.Background(), "text", "claude", Options{})
	require.ErrorIs(t, err, ErrNoProvider)
}

func TestServiceProviderErrorWrapped(t *testing.T) {
	svc := NewService(nil, nil, fixedProvider{name: "gemini", err: errors.New("quota exhausted")})

	_, err := svc.Summarize(context.Background(), "text", "gemini", Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "summarize with gemini")
	require.Contains(t, err.Error(), "quota exhausted")
}

func TestServiceModels(t *testing.T) {
	svc := NewService(nil, nil,
		fixedProvider{name: "openai"},
		fixedProvider{name: "gemini"},
	)
	require.Equal(t, []string{"gemini", "openai"}, svc.Models())
}

func TestChatProviderRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer server.Close()

	provider, err := NewChatProvider("openai", server.URL+"/v1", "test-key", "gpt-4o-mini")
	require.NoError(t, err)

	got, err := provider.Complete(context.Background(), "question")
	require.NoError(t, err)
	require.Equal(t, "the answer", got)
}

func TestChatProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	provider, err := NewChatProvider("mistral", server.URL, "key", "mistral-small")
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), "question")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 429")
	require.Contains(t, err.Error(), "rate limited")
}

func TestChatProviderRequiresCredentials(t *testing.T) {
	_, err := NewChatProvider("openai", "https://api.example.com", "", "model")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "api key"))
}
