package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/llm"
	"github.com/mlippuner/swissbench/internal/rag"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the retrieval databases for the configured professions",
	Long: "Reads the .md and .txt documents under <data>/rag/documents/<profession>,\n" +
		"chunks and embeds them, and writes the chunk database used by\n" +
		"'benchmark --rag'. Run it whenever the source documents change.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		llmCfg := llm.ConfigFromEnv()
		params := cfg.BenchmarkingRAG.RAGParameters
		embedder, err := rag.NewOpenAIEmbedder(llmCfg.OpenAI.APIKey, llmCfg.OpenAI.BaseURL, params.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("embeddings: %w", err)
		}

		professions := cfg.BenchmarkingRAG.Professions
		if len(professions) == 0 {
			return fmt.Errorf("no professions configured under benchmarking_rag")
		}

		dataDir := filepath.Dir(cfg.RawDataDir)
		for _, profession := range professions {
			if err := ingestProfession(cmd, dataDir, profession, embedder, params.ChunkSize, params.ChunkOverlap); err != nil {
				return err
			}
		}
		return nil
	},
}

func ingestProfession(cmd *cobra.Command, dataDir, profession string, embedder rag.Embedder, chunkSize, chunkOverlap int) error {
	docsDir := rag.DocumentsDir(dataDir, profession)
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return fmt.Errorf("read documents dir %s: %w", docsDir, err)
	}

	dbPath := rag.DatabasePath(dataDir, profession)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	chunkStore, err := rag.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer chunkStore.Close()

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".txt" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(docsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read document %s: %w", entry.Name(), err)
		}

		n, err := rag.Ingest(cmd.Context(), chunkStore, embedder, entry.Name(), string(data), chunkSize, chunkOverlap)
		if err != nil {
			return err
		}
		total += n
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %d chunks\n", profession, entry.Name(), n)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks total in %s\n", profession, total, dbPath)
	return nil
}
