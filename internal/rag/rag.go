package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sarathi-app/sarathi/internal/summarize"
)

// ErrNoRelevantChunks means retrieval found nothing above the score floor.
var ErrNoRelevantChunks = errors.New("no relevant chunks for question")

// Config tunes chunking and retrieval.
type Config struct {
	ChunkSize int
	Overlap   int
	TopK      int
	MinScore  float64
}

// DefaultConfig matches the chunking used at index time to the
// retrieval window used at question time.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 500,
		Overlap:   100,
		TopK:      3,
		MinScore:  0.1,
	}
}

// Processor chunks and embeds documents into the store.
type Processor struct {
	store    *Store
	embedder Embedder
	config   Config
	logger   *slog.Logger
}

// NewProcessor wires a processor over a store and embedder.
func NewProcessor(store *Store, embedder Embedder, config Config, logger *slog.Logger) *Processor {
	if config.ChunkSize <= 0 {
		config = DefaultConfig()
	}
	return &Processor{store: store, embedder: embedder, config: config, logger: logger}
}

// ProcessResult reports what indexing produced.
type ProcessResult struct {
	DocumentID string
	Chunks     int
	Elapsed    time.Duration
}

// ProcessDocument splits text into overlapping chunks, embeds each one, and
// replaces the document's rows in the store. An empty documentID gets a
// fresh UUID.
func (p *Processor) ProcessDocument(ctx context.Context, documentID, text string) (ProcessResult, error) {
	start := time.Now()
	if documentID == "" {
		documentID = uuid.NewString()
	}

	chunks := Split(text, p.config.ChunkSize, p.config.Overlap)
	if len(chunks) == 0 {
		return ProcessResult{}, fmt.Errorf("no chunkable text in document %q", documentID)
	}

	stored := make([]StoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := p.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return ProcessResult{}, fmt.Errorf("embed chunk %d of %q: %w", chunk.Index, documentID, err)
		}
		stored = append(stored, StoredChunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			Index:      chunk.Index,
			Text:       chunk.Text,
			Embedding:  vec,
		})
	}

	if err := p.store.ReplaceDocument(ctx, documentID, stored); err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{
		DocumentID: documentID,
		Chunks:     len(stored),
		Elapsed:    time.Since(start),
	}
	if p.logger != nil {
		p.logger.Info("document indexed",
			"document_id", documentID,
			"chunks", result.Chunks,
			"embedder", p.embedder.Name(),
			"elapsed_ms", result.Elapsed.Milliseconds())
	}
	return result, nil
}

// Answerer retrieves relevant chunks and asks a completion provider.
type Answerer struct {
	store    *Store
	embedder Embedder
	provider summarize.Provider
	config   Config
	logger   *slog.Logger
}

// NewAnswerer wires an answerer over the store, embedder, and provider.
func NewAnswerer(store *Store, embedder Embedder, provider summarize.Provider, config Config, logger *slog.Logger) *Answerer {
	if config.TopK <= 0 {
		config = DefaultConfig()
	}
	return &Answerer{store: store, embedder: embedder, provider: provider, config: config, logger: logger}
}

// AnswerResult carries the answer plus retrieval provenance.
type AnswerResult struct {
	Answer  string
	Sources []ScoredChunk
}

// AnswerDocument answers a question against one indexed document.
func (a *Answerer) AnswerDocument(ctx context.Context, documentID, question string, history []summarize.Message) (AnswerResult, error) {
	queryVec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("embed question: %w", err)
	}

	matches, err := a.store.Search(ctx, documentID, queryVec, a.config.TopK, a.config.MinScore)
	if err != nil {
		return AnswerResult{}, err
	}
	if len(matches) == 0 {
		return AnswerResult{}, ErrNoRelevantChunks
	}

	var contextParts []string
	for _, match := range matches {
		contextParts = append(contextParts, match.Chunk.Text)
	}

	prompt := summarize.BuildAnswerPrompt(question, strings.Join(contextParts, "\n\n---\n\n"), history)
	answer, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("answer via %s: %w", a.provider.Name(), err)
	}

	if a.logger != nil {
		a.logger.Debug("question answered",
			"document_id", documentID,
			"sources", len(matches),
			"top_score", matches[0].Score)
	}
	return AnswerResult{Answer: strings.TrimSpace(answer), Sources: matches}, nil
}
