// Package rag provides the retrieval collaborator for RAG-assisted
// answer generation: a sqlite-backed chunk store queried by cosine
// distance over embeddings from an OpenAI-compatible endpoint.
package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mlippuner/swissbench/internal/exam"

	_ "modernc.org/sqlite"
)

// Retriever returns the k most relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]exam.RetrievedChunk, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// OpenAIEmbedder embeds via an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder. baseURL may be empty for the
// OpenAI API itself.
func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embeddings API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}

func (e *OpenAIEmbedder) ModelID() string { return e.model }

// Store is a sqlite chunk database, one file per profession.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the chunk database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping chunk store: %w", err)
	}
	s := &Store{db: db}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("migrate chunk store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func (s *Store) insertChunk(ctx context.Context, source string, index int, text string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chunks (source, chunk_index, text, embedding) VALUES (?, ?, ?, ?)",
		source, index, text, encodeVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// StoreRetriever retrieves from a chunk Store by brute-force cosine
// distance. Fine for the corpus sizes one profession produces.
type StoreRetriever struct {
	store    *Store
	embedder Embedder
}

// NewStoreRetriever builds a retriever over an opened chunk store.
func NewStoreRetriever(store *Store, embedder Embedder) *StoreRetriever {
	return &StoreRetriever{store: store, embedder: embedder}
}

func (r *StoreRetriever) Retrieve(ctx context.Context, query string, k int) ([]exam.RetrievedChunk, error) {
	// E5-family models expect a query prefix.
	if strings.Contains(strings.ToLower(r.embedder.ModelID()), "e5") {
		query = "query: " + query
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := r.store.db.QueryContext(ctx, "SELECT source, chunk_index, text, embedding FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close()

	var results []exam.RetrievedChunk
	for rows.Next() {
		var chunk exam.RetrievedChunk
		var blob []byte
		if err := rows.Scan(&chunk.Source, &chunk.ChunkIndex, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Distance = cosineDistance(queryVec, decodeVector(blob))
		results = append(results, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// cosineDistance returns 1 - cosine similarity; 1 for degenerate
// vectors so they sort last.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
