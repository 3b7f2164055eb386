package rag

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDocumentNotFound means no chunks exist for the document.
var ErrDocumentNotFound = errors.New("document not found in rag store")

// StoredChunk is one retrievable chunk row.
type StoredChunk struct {
	ID         string
	DocumentID string
	Index      int
	Text       string
	Embedding  []float32
}

// ScoredChunk pairs a chunk with its query similarity.
type ScoredChunk struct {
	Chunk StoredChunk
	Score float64
}

// Store persists chunks and their embeddings in SQLite. Similarity search
// runs in Go over the document's rows; per-document chunk counts are small
// enough that a vector index would be overkill.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenStore opens (and migrates) the chunk database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure rag store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open rag store %q: %w", path, err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init rag schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		dimensions INTEGER NOT NULL,
		norm REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceDocument atomically swaps all chunks for a document.
func (s *Store) ReplaceDocument(ctx context.Context, documentID string, chunks []StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear document %q: %w", documentID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, chunk_index, content, embedding, dimensions, norm)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		blob, err := encodeEmbedding(chunk.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, documentID, chunk.Index, chunk.Text,
			blob, len(chunk.Embedding), vectorNorm(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("insert chunk %q: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns the topK chunks of a document most similar to the query
// embedding, filtered by minScore and ordered best first.
func (s *Store) Search(ctx context.Context, documentID string, query []float32, topK int, minScore float64) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = 3
	}

	queryNorm := vectorNorm(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chunk_index, content, embedding, norm
		FROM chunks WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks for %q: %w", documentID, err)
	}
	defer rows.Close()

	var scored []ScoredChunk
	found := false
	for rows.Next() {
		found = true
		var chunk StoredChunk
		var blob []byte
		var norm float64
		if err := rows.Scan(&chunk.ID, &chunk.Index, &chunk.Text, &blob, &norm); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		chunk.DocumentID = documentID
		chunk.Embedding, err = decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}

		score := cosineWithNorms(query, chunk.Embedding, queryNorm, norm)
		if score < minScore {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, documentID)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Count returns the chunk count for a document.
func (s *Store) Count(ctx context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks for %q: %w", documentID, err)
	}
	return count, nil
}

// DeleteDocument removes every chunk of a document.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("delete document %q: %w", documentID, err)
	}
	return nil
}

func encodeEmbedding(vec []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errors.New("embedding blob length not a multiple of 4")
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return vec, nil
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// cosineWithNorms scores against a stored row using its precomputed norm.
func cosineWithNorms(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
