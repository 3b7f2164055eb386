package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sarathi-app/sarathi/internal/extract"
)

// Result is one completed summarization.
type Result struct {
	Summary        string        `json:"summary"`
	Model          string        `json:"model"`
	WordCount      int           `json:"word_count"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Service routes summarization requests to named providers.
type Service struct {
	logger    *slog.Logger
	providers map[string]Provider
	fallback  Provider
}

// NewService builds a service over a provider set. The fallback serves
// requests naming an unknown model; a nil fallback makes those an error.
func NewService(logger *slog.Logger, fallback Provider, providers ...Provider) *Service {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{logger: logger, providers: byName, fallback: fallback}
}

// Models lists configured provider names in stable order.
func (s *Service) Models() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider resolves a model name, falling back when unknown.
func (s *Service) Provider(model string) (Provider, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if p, ok := s.providers[model]; ok {
		return p, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoProvider, model)
}

// Summarize produces a cleaned summary of text with the requested model.
func (s *Service) Summarize(ctx context.Context, text, model string, opts Options) (Result, error) {
	started := time.Now()
	opts = opts.Normalize()

	provider, err := s.Provider(model)
	if err != nil {
		return Result{}, err
	}

	prompt := BuildPrompt(text, opts)
	raw, err := provider.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("summarize with %s: %w", provider.Name(), err)
	}

	result := Result{
		Summary:        Clean(raw, opts),
		Model:          provider.Name(),
		WordCount:      extract.WordCount(text),
		ProcessingTime: time.Since(started),
	}

	if s.logger != nil {
		s.logger.Info("summary generated",
			"model", result.Model,
			"input_words", result.WordCount,
			"summary_length", len(result.Summary),
			"duration_ms", result.ProcessingTime.Milliseconds(),
		)
	}
	return result, nil
}
