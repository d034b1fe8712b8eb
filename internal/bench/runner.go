package bench

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mlippuner/swissbench/internal/candidate"
	"github.com/mlippuner/swissbench/internal/config"
	"github.com/mlippuner/swissbench/internal/exam"
	"github.com/mlippuner/swissbench/internal/judge"
	"github.com/mlippuner/swissbench/internal/llm"
	"github.com/mlippuner/swissbench/internal/rag"
	"github.com/mlippuner/swissbench/internal/store"
)

// ProviderFactory builds a provider for a model name.
type ProviderFactory func(ctx context.Context, model string) (llm.Provider, error)

// RetrieverFactory opens the retriever for a profession's document
// database.
type RetrieverFactory func(profession string) (rag.Retriever, error)

// RunRecorder persists one benchmark run row. Satisfied by
// *store.Store.
type RunRecorder interface {
	RecordBenchmarkRun(ctx context.Context, run store.BenchmarkRun) error
}

// Runner benchmarks processed exams with the configured models and
// judges and writes results under the benchmarked data directory.
type Runner struct {
	cfg       *config.Config
	selection config.Benchmarking
	repo      *Repository
	recorder  RunRecorder

	retrievers RetrieverFactory
	ragDB      string
	topK       int

	providers ProviderFactory
	genCfg    candidate.Config
	judgeCfg  judge.Config

	// now is a hook for tests.
	now func() time.Time
}

// NewRunner creates a benchmark runner without retrieval.
func NewRunner(cfg *config.Config, llmCfg llm.Config, recorder RunRecorder) *Runner {
	return &Runner{
		cfg:       cfg,
		selection: cfg.Benchmarking,
		repo:      NewRepository(cfg.ProcessedDataDir, cfg.RawDataDir, cfg.Benchmarking.Professions, cfg.Benchmarking.ExamNumbers),
		recorder:  recorder,
		providers: func(ctx context.Context, model string) (llm.Provider, error) {
			return llm.NewModelProvider(ctx, llmCfg, model, recorderAsRequestRecorder(recorder))
		},
		genCfg:   candidate.DefaultConfig(),
		judgeCfg: judge.DefaultConfig(),
		now:      time.Now,
	}
}

// NewRAGRunner creates a benchmark runner that retrieves context for
// every leaf question. The factory is called once per exam with the
// configured rag_database name, or the exam's profession when none is
// configured.
func NewRAGRunner(cfg *config.Config, llmCfg llm.Config, recorder RunRecorder, retrievers RetrieverFactory) *Runner {
	r := NewRunner(cfg, llmCfg, recorder)
	r.selection = cfg.BenchmarkingRAG.Benchmarking
	r.repo = NewRepository(cfg.ProcessedDataDir, cfg.RawDataDir, r.selection.Professions, r.selection.ExamNumbers)
	r.retrievers = retrievers
	r.ragDB = cfg.BenchmarkingRAG.RAGDatabase
	r.topK = cfg.BenchmarkingRAG.RAGParameters.TopK
	return r
}

// recorderAsRequestRecorder exposes a RunRecorder's request log when
// it has one.
func recorderAsRequestRecorder(recorder RunRecorder) llm.RequestRecorder {
	if rr, ok := recorder.(llm.RequestRecorder); ok {
		return rr
	}
	return nil
}

// Run benchmarks every discovered exam. Exams with unreadable sheets
// and failed judge runs are skipped with a warning; only setup errors
// abort the whole run.
func (r *Runner) Run(ctx context.Context) error {
	exams, err := r.repo.ListLatestExams()
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		slog.Info("no processed exams found for benchmarking")
		return nil
	}

	invocationID := uuid.NewString()
	slog.Info("starting benchmark",
		"invocation_id", invocationID,
		"exams", len(exams),
		"models", r.selection.Models,
		"judges", r.selection.Judges,
		"rag", r.retrievers != nil)

	for _, ex := range exams {
		if err := r.runExam(ctx, ex, invocationID); err != nil {
			return err
		}
	}

	slog.Info("benchmark complete", "invocation_id", invocationID, "output_dir", r.cfg.BenchmarkedDataDir)
	return nil
}

func (r *Runner) runExam(ctx context.Context, ex ProcessedExam, invocationID string) error {
	answerSheet, err := exam.ReadSheet(filepath.Join(ex.ProcessedDir, "answer_sheet.json"))
	if err != nil {
		slog.Warn("skipping exam, missing answer sheet", "exam", ex.ExamID(), "error", err)
		return nil
	}
	solutionSheet, err := exam.ReadSheet(filepath.Join(ex.ProcessedDir, "solution_sheet.json"))
	if err != nil {
		slog.Warn("skipping exam, missing solution sheet", "exam", ex.ExamID(), "error", err)
		return nil
	}

	var retriever rag.Retriever
	if r.retrievers != nil {
		dbName := r.ragDB
		if dbName == "" {
			dbName = ex.Profession
		}
		retriever, err = r.retrievers(dbName)
		if err != nil {
			slog.Warn("skipping exam, retriever unavailable", "exam", ex.ExamID(), "database", dbName, "error", err)
			return nil
		}
	}

	timestamp := r.now().Format("20060102_150405")
	slog.Info("benchmarking exam", "exam", ex.ExamID(), "processed_run", ex.Timestamp)

	for _, model := range r.selection.Models {
		if err := r.runModel(ctx, ex, answerSheet, solutionSheet, retriever, model, timestamp, invocationID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runModel(ctx context.Context, ex ProcessedExam, answerSheet, solutionSheet *exam.Sheet, retriever rag.Retriever, model, timestamp, invocationID string) error {
	provider, err := r.providers(ctx, model)
	if err != nil {
		return fmt.Errorf("provider for model %s: %w", model, err)
	}

	var gen *candidate.Generator
	if retriever != nil {
		gen = candidate.NewRAGGenerator(provider, retriever, r.topK, r.genCfg)
	} else {
		gen = candidate.NewGenerator(provider, r.genCfg)
	}

	slog.Info("generating answers", "exam", ex.ExamID(), "model", model)
	modelAnswers, err := gen.GenerateAnswers(ctx, answerSheet)
	if err != nil {
		slog.Error("answer generation failed", "exam", ex.ExamID(), "model", model, "error", err)
		modelAnswers = nil
	}

	merged := exam.EnsureStructure(answerSheet, modelAnswers)
	r.enrichMetadata(merged, answerSheet, model, ex, timestamp)

	modelDir := r.modelDir(ex, model, timestamp)

	if retriever != nil {
		report := rag.ChunksReport(merged)
		if err := exam.WriteJSON(filepath.Join(modelDir, "retrieved_chunks.json"), report); err != nil {
			return err
		}
		rag.StripChunks(merged)
	}

	if err := exam.WriteSheet(filepath.Join(modelDir, "model_answers.json"), merged); err != nil {
		return err
	}

	for _, judgeName := range r.selection.Judges {
		if err := r.runJudge(ctx, ex, merged, solutionSheet, model, judgeName, modelDir, timestamp, invocationID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runJudge(ctx context.Context, ex ProcessedExam, modelAnswers, solutionSheet *exam.Sheet, model, judgeName, modelDir, timestamp, invocationID string) error {
	provider, err := r.providers(ctx, judgeName)
	if err != nil {
		return fmt.Errorf("provider for judge %s: %w", judgeName, err)
	}
	j := judge.New(provider, r.judgeCfg)

	graded := modelAnswers.Clone()
	exam.InitJudgments(graded)
	r.enrichGradingMetadata(graded, model, judgeName, ex, timestamp)

	runs := r.selection.NumJudgeRuns
	if runs < 1 {
		runs = 1
	}
	for runID := 1; runID <= runs; runID++ {
		slog.Info("grading", "exam", ex.ExamID(), "model", model, "judge", judgeName, "run", runID, "runs", runs)
		runResult, err := j.Grade(ctx, modelAnswers, solutionSheet)
		if err != nil {
			slog.Error("judge run failed", "exam", ex.ExamID(), "judge", judgeName, "run", runID, "error", err)
			continue
		}
		exam.CollectJudgments(graded, runResult, judgeName, runID)
	}

	exam.Aggregate(graded)
	exam.InjectMaxPoints(graded, solutionSheet)
	summary := exam.ComputeSummary(graded)
	graded.GradingSummary = &summary

	gradedPath := filepath.Join(modelDir, "judge="+SanitizeName(judgeName), "graded_answers.json")
	if err := exam.WriteSheet(gradedPath, graded); err != nil {
		return err
	}

	if r.recorder != nil {
		summaryJSON, err := exam.MarshalIndent(summary)
		if err != nil {
			return err
		}
		err = r.recorder.RecordBenchmarkRun(ctx, store.BenchmarkRun{
			InvocationID:       invocationID,
			Profession:         ex.Profession,
			ExamNumber:         ex.ExamNumber,
			Model:              model,
			Judge:              judgeName,
			BenchmarkTimestamp: timestamp,
			RAG:                r.retrievers != nil,
			GradedPath:         gradedPath,
			SummaryJSON:        string(summaryJSON),
		})
		if err != nil {
			slog.Warn("failed to record benchmark run", "error", err)
		}
	}
	return nil
}

// modelDir builds benchmarked/<profession>/<exam>/<processed run>/
// model=<name>[_rag]/<benchmark timestamp>.
func (r *Runner) modelDir(ex ProcessedExam, model, timestamp string) string {
	name := "model=" + SanitizeName(model)
	if r.retrievers != nil {
		name += "_rag"
	}
	return filepath.Join(r.cfg.BenchmarkedDataDir, ex.Profession, ex.ExamNumber, ex.Timestamp, name, timestamp)
}

func (r *Runner) enrichMetadata(sheet, answerSheet *exam.Sheet, model string, ex ProcessedExam, timestamp string) {
	if sheet.ExamMetadata == nil {
		sheet.ExamMetadata = map[string]any{}
		for k, v := range answerSheet.ExamMetadata {
			sheet.ExamMetadata[k] = v
		}
	}
	sheet.ExamMetadata["evaluated_model"] = model
	sheet.ExamMetadata["benchmark_timestamp"] = timestamp
	sheet.ExamMetadata["source_processing_run"] = ex.Timestamp
}

func (r *Runner) enrichGradingMetadata(sheet *exam.Sheet, model, judgeName string, ex ProcessedExam, timestamp string) {
	if sheet.GradingMetadata == nil {
		sheet.GradingMetadata = map[string]any{}
	}
	sheet.GradingMetadata["evaluation_model"] = model
	sheet.GradingMetadata["judge_model"] = judgeName
	sheet.GradingMetadata["benchmark_timestamp"] = timestamp
	sheet.GradingMetadata["source_processing_run"] = ex.Timestamp
}
