package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentsDir is where source documents for a profession live,
// relative to the data directory.
func DocumentsDir(dataDir, profession string) string {
	return filepath.Join(dataDir, "rag", "documents", profession)
}

// DatabasePath is the chunk database for a profession, relative to
// the data directory.
func DatabasePath(dataDir, profession string) string {
	return filepath.Join(dataDir, "rag", "vector_database", profession, "chunks.db")
}

// ChunkText splits text into overlapping chunks of roughly size runes.
// The final chunk may be shorter. overlap must be smaller than size.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Ingest chunks a document, embeds each chunk, and stores the result
// under the given source name.
func Ingest(ctx context.Context, store *Store, embedder Embedder, source, text string, chunkSize, chunkOverlap int) (int, error) {
	chunks := ChunkText(text, chunkSize, chunkOverlap)
	for i, chunk := range chunks {
		// E5-family models expect a passage prefix on documents.
		input := chunk
		if strings.Contains(strings.ToLower(embedder.ModelID()), "e5") {
			input = "passage: " + chunk
		}
		vec, err := embedder.Embed(ctx, input)
		if err != nil {
			return i, fmt.Errorf("ingest %s chunk %d: %w", source, i, err)
		}
		if err := store.insertChunk(ctx, source, i, chunk, vec); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}
