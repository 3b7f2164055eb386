// Package rag stores document chunks with embeddings and answers questions
// by retrieving the most relevant chunks as context for a language model.
package rag

import "strings"

// Chunk is one overlapping word window of a document.
type Chunk struct {
	Index int
	Text  string
}

// Split cuts text into word windows of chunkSize with overlap words shared
// between neighbors. Overlap keeps sentences that straddle a boundary
// retrievable from either side.
func Split(text string, chunkSize, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := chunkSize - overlap
	var chunks []Chunk
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
