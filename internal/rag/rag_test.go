package rag

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarathi-app/sarathi/internal/summarize"
)

func TestSplitWindowsAndOverlap(t *testing.T) {
	words := make([]string, 1200)
	for i := range words {
		words[i] = "w"
	}
	chunks := Split(strings.Join(words, " "), 500, 100)

	require.Len(t, chunks, 3)
	require.Equal(t, 0, chunks[0].Index)
	require.Equal(t, 500, len(strings.Fields(chunks[0].Text)))
	// Step is chunkSize-overlap, so the last window holds the tail.
	require.Equal(t, 400, len(strings.Fields(chunks[2].Text)))
}

func TestSplitShortText(t *testing.T) {
	chunks := Split("just a few words here", 500, 100)
	require.Len(t, chunks, 1)
	require.Equal(t, "just a few words here", chunks[0].Text)

	require.Empty(t, Split("   ", 500, 100))
}

func TestHashEmbedderDeterministic(t *testing.T) {
	embedder := NewHashEmbedder(64)

	first, err := embedder.Embed(context.Background(), "the solar panel converts sunlight")
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), "the solar panel converts sunlight")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first, 64)
	require.InDelta(t, 1.0, Cosine(first, second), 1e-6)
}

func TestCosineDisjointVectors(t *testing.T) {
	require.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	require.InDelta(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}), 1e-9)
}

func TestStoreSearchRanksBySimilarity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	embedder := NewHashEmbedder(64)

	texts := []string{
		"photosynthesis converts light into chemical energy in plants",
		"the quarterly revenue report showed strong growth in asia",
		"chlorophyll absorbs light during photosynthesis in plant leaves",
	}
	var stored []StoredChunk
	for i, text := range texts {
		vec, err := embedder.Embed(ctx, text)
		require.NoError(t, err)
		stored = append(stored, StoredChunk{
			ID: "c" + string(rune('a'+i)), Index: i, Text: text, Embedding: vec,
		})
	}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", stored))

	query, err := embedder.Embed(ctx, "how does photosynthesis use light in plants")
	require.NoError(t, err)

	matches, err := store.Search(ctx, "doc-1", query, 2, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
	require.Contains(t, matches[0].Chunk.Text, "photosynthesis")
}

func TestStoreSearchUnknownDocument(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Search(context.Background(), "missing", []float32{1}, 3, 0)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestStoreReplaceDocumentSwapsChunks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []StoredChunk{
		{ID: "a", Index: 0, Text: "old", Embedding: []float32{1, 0}},
		{ID: "b", Index: 1, Text: "old", Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", first))

	second := []StoredChunk{{ID: "c", Index: 0, Text: "new", Embedding: []float32{1, 1}}}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", second))

	count, err := store.Count(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	matches, err := store.Search(ctx, "doc-1", []float32{1, 1}, 5, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "new", matches[0].Chunk.Text)
}

func TestStoreDeleteDocument(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chunks := []StoredChunk{{ID: "a", Index: 0, Text: "t", Embedding: []float32{1}}}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", chunks))
	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	count, err := store.Count(ctx, "doc-1")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestProcessorIndexesDocument(t *testing.T) {
	store := openTestStore(t)
	processor := NewProcessor(store, NewHashEmbedder(64), Config{ChunkSize: 10, Overlap: 2, TopK: 3}, nil)

	words := make([]string, 25)
	for i := range words {
		words[i] = "term"
	}
	result, err := processor.ProcessDocument(context.Background(), "", strings.Join(words, " "))
	require.NoError(t, err)
	require.NotEmpty(t, result.DocumentID)
	require.Greater(t, result.Chunks, 1)

	count, err := store.Count(context.Background(), result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, result.Chunks, count)
}

func TestProcessorRejectsEmptyText(t *testing.T) {
	store := openTestStore(t)
	processor := NewProcessor(store, NewHashEmbedder(64), DefaultConfig(), nil)

	_, err := processor.ProcessDocument(context.Background(), "doc-1", "   ")
	require.Error(t, err)
}

type stubProvider struct {
	lastPrompt string
	reply      string
	err        error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.lastPrompt = prompt
	return p.reply, p.err
}

func TestAnswererRetrievesAndPrompts(t *testing.T) {
	store := openTestStore(t)
	embedder := NewHashEmbedder(64)
	ctx := context.Background()

	processor := NewProcessor(store, embedder, Config{ChunkSize: 20, Overlap: 4, TopK: 2, MinScore: 0}, nil)
	text := "mitochondria produce energy for the cell through respiration " +
		"while ribosomes assemble proteins from amino acids and the nucleus " +
		"stores genetic material in chromosomes guarded by a membrane"
	result, err := processor.ProcessDocument(ctx, "doc-1", text)
	require.NoError(t, err)

	provider := &stubProvider{reply: "Mitochondria produce the cell's energy."}
	answerer := NewAnswerer(store, embedder, provider, Config{ChunkSize: 20, Overlap: 4, TopK: 2, MinScore: 0}, nil)

	answer, err := answerer.AnswerDocument(ctx, result.DocumentID, "what do mitochondria produce", nil)
	require.NoError(t, err)
	require.Equal(t, "Mitochondria produce the cell's energy.", answer.Answer)
	require.NotEmpty(t, answer.Sources)
	require.Contains(t, provider.lastPrompt, "mitochondria")
	require.Contains(t, provider.lastPrompt, "what do mitochondria produce")
}

func TestAnswererNoRelevantChunks(t *testing.T) {
	store := openTestStore(t)
	embedder := NewHashEmbedder(64)
	ctx := context.Background()

	chunks := []StoredChunk{{ID: "a", Index: 0, Text: "quarterly revenue figures", Embedding: mustEmbed(t, embedder, "quarterly revenue figures")}}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", chunks))

	answerer := NewAnswerer(store, embedder, &stubProvider{}, Config{ChunkSize: 500, Overlap: 100, TopK: 3, MinScore: 0.99}, nil)

	_, err := answerer.AnswerDocument(ctx, "doc-1", "unrelated astrophysics question", nil)
	require.ErrorIs(t, err, ErrNoRelevantChunks)
}

func TestAnswererProviderFailure(t *testing.T) {
	store := openTestStore(t)
	embedder := NewHashEmbedder(64)
	ctx := context.Background()

	text := "the contract term runs for twelve months with automatic renewal"
	chunks := []StoredChunk{{ID: "a", Index: 0, Text: text, Embedding: mustEmbed(t, embedder, text)}}
	require.NoError(t, store.ReplaceDocument(ctx, "doc-1", chunks))

	provider := &stubProvider{err: errors.New("upstream unavailable")}
	answerer := NewAnswerer(store, embedder, provider, Config{ChunkSize: 500, Overlap: 100, TopK: 3, MinScore: 0}, nil)

	_, err := answerer.AnswerDocument(ctx, "doc-1", "how long is the contract term", nil)
	require.ErrorContains(t, err, "upstream unavailable")
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "rag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustEmbed(t *testing.T, embedder Embedder, text string) []float32 {
	t.Helper()
	vec, err := embedder.Embed(context.Background(), text)
	require.NoError(t, err)
	return vec
}

var _ summarize.Provider = (*stubProvider)(nil)
