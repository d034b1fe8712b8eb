package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/bench"
	"github.com/mlippuner/swissbench/internal/llm"
	"github.com/mlippuner/swissbench/internal/rag"
	"github.com/mlippuner/swissbench/internal/store"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Generate model answers for processed exams and grade them",
	RunE: func(cmd *cobra.Command, args []string) error {
		useRAG, _ := cmd.Flags().GetBool("rag")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		llmCfg := llm.ConfigFromEnv()
		if err := llmCfg.Validate(); err != nil {
			return fmt.Errorf("LLM configuration: %w", err)
		}

		st, err := store.Open(cfg.RunLogPath)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer st.Close()

		var runner *bench.Runner
		if useRAG {
			params := cfg.BenchmarkingRAG.RAGParameters
			embedder, err := rag.NewOpenAIEmbedder(llmCfg.OpenAI.APIKey, llmCfg.OpenAI.BaseURL, params.EmbeddingModel)
			if err != nil {
				return fmt.Errorf("embeddings: %w", err)
			}

			dataDir := filepath.Dir(cfg.RawDataDir)
			factory := func(profession string) (rag.Retriever, error) {
				dbPath := rag.DatabasePath(dataDir, profession)
				if _, err := os.Stat(dbPath); err != nil {
					return nil, fmt.Errorf("chunk database not found at %s, run 'swissbench ingest' first", dbPath)
				}
				chunkStore, err := rag.OpenStore(dbPath)
				if err != nil {
					return nil, err
				}
				return rag.NewStoreRetriever(chunkStore, embedder), nil
			}
			runner = bench.NewRAGRunner(cfg, llmCfg, st, factory)
		} else {
			runner = bench.NewRunner(cfg, llmCfg, st)
		}

		return runner.Run(cmd.Context())
	},
}

func init() {
	benchmarkCmd.Flags().Bool("rag", false, "Retrieve document context for every question")
}
