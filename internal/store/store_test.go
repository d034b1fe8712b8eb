package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlippuner/swissbench/internal/llm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordRequestAndTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordRequest(ctx, llm.RequestRecord{
		Model: "openai/gpt-4o-mini", Purpose: "answer", LatencyMs: 420,
		InputTokens: 100, OutputTokens: 50, Success: true, CostUSD: 0.000045,
	}))
	require.NoError(t, s.RecordRequest(ctx, llm.RequestRecord{
		Model: "openai/gpt-4o-mini", Purpose: "judge",
		Success: false, ErrorMessage: "rate limited",
	}))
	require.NoError(t, s.RecordRequest(ctx, llm.RequestRecord{
		Model: "swiss-ai/apertus-70b", Purpose: "answer",
		InputTokens: 10, OutputTokens: 5, Success: true,
	}))

	all, err := s.Totals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Requests)
	assert.Equal(t, 1, all.Failures)
	assert.Equal(t, 110, all.InputTokens)
	assert.Equal(t, 55, all.OutputTokens)
	assert.InDelta(t, 0.000045, all.CostUSD, 1e-9)

	one, err := s.Totals(ctx, "swiss-ai/apertus-70b")
	require.NoError(t, err)
	assert.Equal(t, 1, one.Requests)
	assert.Equal(t, 0, one.Failures)
}

func TestStore_RecordBenchmarkRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordBenchmarkRun(ctx, BenchmarkRun{
		InvocationID:       "inv-1",
		Profession:         "Elektroinstallateur",
		ExamNumber:         "1",
		Model:              "openai/gpt-4o-mini",
		Judge:              "google/gemini-2.5-flash",
		BenchmarkTimestamp: "20260830_120000",
		GradedPath:         "/data/benchmarked/.../graded_answers.json",
		SummaryJSON:        `{"total_points": 10}`,
	}))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM benchmark_runs").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_EmptyTotals(t *testing.T) {
	s := openTestStore(t)

	totals, err := s.Totals(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, RequestTotals{}, totals)
}
