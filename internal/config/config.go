// Package config loads the benchmark configuration file.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config mirrors config.yaml.
type Config struct {
	RawDataDir         string `mapstructure:"raw_data_dir"`
	ProcessedDataDir   string `mapstructure:"processed_data_dir"`
	BenchmarkedDataDir string `mapstructure:"benchmarked_data_dir"`
	EvalDataDir        string `mapstructure:"eval_data_dir"`
	RunLogPath         string `mapstructure:"run_log_path"`

	Benchmarking    Benchmarking    `mapstructure:"benchmarking"`
	BenchmarkingRAG BenchmarkingRAG `mapstructure:"benchmarking_rag"`
	Evaluation      Evaluation      `mapstructure:"evaluation"`
}

// Benchmarking selects what to benchmark and with whom.
type Benchmarking struct {
	Professions  []string `mapstructure:"professions"`
	ExamNumbers  []string `mapstructure:"exam_numbers"`
	Models       []string `mapstructure:"models"`
	Judges       []string `mapstructure:"judges"`
	NumJudgeRuns int      `mapstructure:"num_judge_runs"`
}

// BenchmarkingRAG configures the retrieval-augmented benchmark variant.
type BenchmarkingRAG struct {
	Benchmarking  `mapstructure:",squash"`
	RAGDatabase   string        `mapstructure:"rag_database"`
	RAGParameters RAGParameters `mapstructure:"rag_parameters"`
}

// RAGParameters tune retrieval and ingestion.
type RAGParameters struct {
	TopK           int    `mapstructure:"top_k"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// Evaluation selects which benchmark results the eval report covers.
type Evaluation struct {
	Professions []string `mapstructure:"professions"`
	ExamNumbers []string `mapstructure:"exam_numbers"`
	Models      []string `mapstructure:"models"`
	Judges      []string `mapstructure:"judges"`
	Sort        bool     `mapstructure:"sort"`
}

// Load reads the config file and applies defaults for derived paths:
// the benchmarked directory defaults to a sibling of the processed one,
// the run log lives next to it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("benchmarking.num_judge_runs", 1)
	v.SetDefault("benchmarking_rag.num_judge_runs", 1)
	v.SetDefault("benchmarking_rag.rag_parameters.top_k", 3)
	v.SetDefault("benchmarking_rag.rag_parameters.chunk_size", 1000)
	v.SetDefault("benchmarking_rag.rag_parameters.chunk_overlap", 200)
	v.SetDefault("benchmarking_rag.rag_parameters.embedding_model", "text-embedding-3-small")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.ProcessedDataDir == "" {
		return nil, fmt.Errorf("config %s: processed_data_dir is required", path)
	}
	if cfg.BenchmarkedDataDir == "" {
		cfg.BenchmarkedDataDir = filepath.Join(filepath.Dir(cfg.ProcessedDataDir), "benchmarked")
	}
	if cfg.EvalDataDir == "" {
		cfg.EvalDataDir = filepath.Join(filepath.Dir(cfg.ProcessedDataDir), "eval")
	}
	if cfg.RunLogPath == "" {
		cfg.RunLogPath = filepath.Join(filepath.Dir(cfg.ProcessedDataDir), "swissbench.db")
	}

	return &cfg, nil
}
