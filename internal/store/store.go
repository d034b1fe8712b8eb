// Package store keeps the benchmark run log: every LLM request and
// every persisted grading result, in a single sqlite file next to the
// data directories.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlippuner/swissbench/internal/llm"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite run log.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the run log at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping run log: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate run log: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS llm_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL DEFAULT 0,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		cost_usd REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS benchmark_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		invocation_id TEXT NOT NULL,
		profession TEXT NOT NULL,
		exam_number TEXT NOT NULL,
		model TEXT NOT NULL,
		judge TEXT NOT NULL,
		benchmark_timestamp TEXT NOT NULL,
		rag INTEGER NOT NULL DEFAULT 0,
		graded_path TEXT NOT NULL,
		summary_json TEXT NOT NULL DEFAULT '{}'
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRequest implements llm.RequestRecorder.
func (s *Store) RecordRequest(ctx context.Context, rec llm.RequestRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(created_at, model, purpose, latency_ms, input_tokens, output_tokens, success, error_message, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), rec.Model, rec.Purpose, rec.LatencyMs,
		rec.InputTokens, rec.OutputTokens, rec.Success, rec.ErrorMessage, rec.CostUSD,
	)
	if err != nil {
		return fmt.Errorf("insert llm request: %w", err)
	}
	return nil
}

// BenchmarkRun is one graded (exam, model, judge) result.
type BenchmarkRun struct {
	InvocationID       string
	Profession         string
	ExamNumber         string
	Model              string
	Judge              string
	BenchmarkTimestamp string
	RAG                bool
	GradedPath         string
	SummaryJSON        string
}

// RecordBenchmarkRun appends one graded result to the run log.
func (s *Store) RecordBenchmarkRun(ctx context.Context, run BenchmarkRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO benchmark_runs
			(created_at, invocation_id, profession, exam_number, model, judge, benchmark_timestamp, rag, graded_path, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), run.InvocationID, run.Profession, run.ExamNumber,
		run.Model, run.Judge, run.BenchmarkTimestamp, run.RAG, run.GradedPath, run.SummaryJSON,
	)
	if err != nil {
		return fmt.Errorf("insert benchmark run: %w", err)
	}
	return nil
}

// RequestTotals summarizes the logged LLM traffic.
type RequestTotals struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Totals returns aggregate request counters, optionally filtered by
// model ("" matches all).
func (s *Store) Totals(ctx context.Context, model string) (RequestTotals, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM llm_requests`
	args := []any{}
	if model != "" {
		query += " WHERE model = ?"
		args = append(args, model)
	}

	var t RequestTotals
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&t.Requests, &t.Failures, &t.InputTokens, &t.OutputTokens, &t.CostUSD,
	)
	if err != nil {
		return RequestTotals{}, fmt.Errorf("query request totals: %w", err)
	}
	return t, nil
}
