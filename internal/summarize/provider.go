package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNoProvider means the requested model has no configured provider.
var ErrNoProvider = errors.New("no provider configured for model")

// Provider completes one prompt to text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeminiProvider completes prompts through the Google GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider dials the GenAI API.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned empty completion")
	}
	return text, nil
}

// ChatProvider talks to an OpenAI-compatible chat completions endpoint.
// It covers the OpenAI and Mistral APIs with one wire shape.
type ChatProvider struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewChatProvider builds a REST chat provider.
func NewChatProvider(name, endpoint, apiKey, model string) (*ChatProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s api key is empty", name)
	}
	if endpoint == "" {
		return nil, fmt.Errorf("%s endpoint is empty", name)
	}
	return &ChatProvider{
		name:       name,
		endpoint:   strings.TrimSuffix(endpoint, "/") + "/chat/completions",
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}, nil
}

func (p *ChatProvider) Name() string { return p.name }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *ChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", p.name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", p.name, err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode %s response: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		message := ""
		if decoded.Error != nil {
			message = decoded.Error.Message
		}
		return "", fmt.Errorf("%s returned status %d: %s", p.name, resp.StatusCode, message)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return decoded.Choices[0].Message.Content, nil
}

// MockProvider yields a canned summary for development without credentials.
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Complete(_ context.Context, prompt string) (string, error) {
	// The canned text makes the offline path obvious to anyone reading it.
	_ = prompt
	return `# Document Summary

## Executive Summary
This is a development-mode summary produced without any model credentials configured.

## Key Points
- The document was received and its text was extracted successfully
- Configure a provider API key to generate a real summary
- All formatting and delivery paths behave exactly as in production`, nil
}
