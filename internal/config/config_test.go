package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
raw_data_dir: /data/raw
processed_data_dir: /data/processed
benchmarking:
  professions: ["Elektroinstallateur"]
  exam_numbers: ["1", "2"]
  models: ["openai/gpt-4o-mini", "swiss-ai/apertus-70b"]
  judges: ["google/gemini-2.5-flash"]
  num_judge_runs: 3
benchmarking_rag:
  models: ["openai/gpt-4o-mini"]
  judges: ["google/gemini-2.5-flash"]
  rag_parameters:
    top_k: 5
evaluation:
  professions: ["Elektroinstallateur"]
  models: ["openai/gpt-4o-mini"]
  judges: ["google/gemini-2.5-flash"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/processed", cfg.ProcessedDataDir)
	assert.Equal(t, []string{"openai/gpt-4o-mini", "swiss-ai/apertus-70b"}, cfg.Benchmarking.Models)
	assert.Equal(t, 3, cfg.Benchmarking.NumJudgeRuns)
	assert.Equal(t, 5, cfg.BenchmarkingRAG.RAGParameters.TopK)

	// Defaults kick in where the file is silent.
	assert.Equal(t, 1, cfg.BenchmarkingRAG.NumJudgeRuns)
	assert.Equal(t, 1000, cfg.BenchmarkingRAG.RAGParameters.ChunkSize)
	assert.Equal(t, filepath.Join("/data", "benchmarked"), cfg.BenchmarkedDataDir)
	assert.Equal(t, filepath.Join("/data", "eval"), cfg.EvalDataDir)
	assert.Equal(t, filepath.Join("/data", "swissbench.db"), cfg.RunLogPath)
}

func TestLoad_RequiresProcessedDataDir(t *testing.T) {
	path := writeConfig(t, "raw_data_dir: /data/raw\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processed_data_dir")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
