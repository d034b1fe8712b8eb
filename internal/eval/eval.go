// Package eval compares model performance across benchmark runs. It
// picks the newest benchmark run per exam and model, aggregates the
// grading summaries, and writes a timestamped report.
package eval

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mlippuner/swissbench/internal/bench"
	"github.com/mlippuner/swissbench/internal/config"
	"github.com/mlippuner/swissbench/internal/exam"
)

// RunRef identifies the benchmark run a result came from.
type RunRef struct {
	Profession          string `json:"profession"`
	ExamNumber          string `json:"exam_number"`
	ProcessingTimestamp string `json:"processing_timestamp"`
	BenchmarkTimestamp  string `json:"benchmark_timestamp"`
	Judge               string `json:"judge"`
}

// Result collects one model's scores across exams and judges.
type Result struct {
	Model       string    `json:"model"`
	Percentages []float64 `json:"percentages"`
	StdDevs     []float64 `json:"std_devs"`
	Runs        []RunRef  `json:"runs"`
}

// ModelScore is the headline number per model in the report.
type ModelScore struct {
	Model             string  `json:"model"`
	AveragePercentage float64 `json:"average_percentage"`
	StdDev            float64 `json:"std_dev"`
	Samples           int     `json:"samples"`
}

// Pipeline aggregates graded benchmark results.
type Pipeline struct {
	benchmarkedDir string
	evalDir        string
	selection      config.Evaluation

	now func() time.Time
}

// NewPipeline creates an evaluation pipeline from the config.
func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		benchmarkedDir: cfg.BenchmarkedDataDir,
		evalDir:        cfg.EvalDataDir,
		selection:      cfg.Evaluation,
		now:            time.Now,
	}
}

// FindLatestBenchmarkRun returns the processing and benchmark
// timestamps of the newest run for the given exam and model, across
// all processing runs. The model name is matched against the folder
// name as configured, so a RAG run needs the "_rag" suffix in the
// model list.
func (p *Pipeline) FindLatestBenchmarkRun(profession, examNumber, model string) (procTS, benchTS string, ok bool) {
	examDir := filepath.Join(p.benchmarkedDir, profession, examNumber)
	procDirs, err := os.ReadDir(examDir)
	if err != nil {
		return "", "", false
	}

	modelFolder := "model=" + bench.SanitizeName(model)
	for _, procDir := range procDirs {
		if !procDir.IsDir() {
			continue
		}
		benchDirs, err := os.ReadDir(filepath.Join(examDir, procDir.Name(), modelFolder))
		if err != nil {
			continue
		}
		for _, benchDir := range benchDirs {
			if !benchDir.IsDir() {
				continue
			}
			if benchDir.Name() > benchTS {
				benchTS = benchDir.Name()
				procTS = procDir.Name()
			}
		}
	}
	return procTS, benchTS, benchTS != ""
}

// Aggregate loads the newest graded results per exam and model for
// every configured judge. Missing graded files are logged and skipped.
func (p *Pipeline) Aggregate() ([]Result, error) {
	results := make([]Result, len(p.selection.Models))
	for i, model := range p.selection.Models {
		results[i] = Result{Model: model}
	}

	for _, profession := range p.selection.Professions {
		numberDirs, err := os.ReadDir(filepath.Join(p.benchmarkedDir, profession))
		if err != nil {
			slog.Warn("no benchmark results for profession", "profession", profession)
			continue
		}
		for _, numberDir := range numberDirs {
			if !numberDir.IsDir() {
				continue
			}
			examNumber := numberDir.Name()
			if len(p.selection.ExamNumbers) > 0 && !slices.Contains(p.selection.ExamNumbers, examNumber) {
				continue
			}

			for i := range results {
				p.collect(&results[i], profession, examNumber)
			}
		}
	}
	return results, nil
}

func (p *Pipeline) collect(result *Result, profession, examNumber string) {
	procTS, benchTS, ok := p.FindLatestBenchmarkRun(profession, examNumber, result.Model)
	if !ok {
		return
	}

	for _, judgeName := range p.selection.Judges {
		gradedPath := filepath.Join(p.benchmarkedDir, profession, examNumber, procTS,
			"model="+bench.SanitizeName(result.Model), benchTS,
			"judge="+bench.SanitizeName(judgeName), "graded_answers.json")

		sheet, err := exam.ReadSheet(gradedPath)
		if err != nil {
			slog.Warn("graded file not found", "path", gradedPath)
			continue
		}
		if sheet.GradingSummary == nil {
			slog.Warn("graded file has no summary", "path", gradedPath)
			continue
		}

		result.Percentages = append(result.Percentages, sheet.GradingSummary.Aggregation.AveragePercentage)
		result.StdDevs = append(result.StdDevs, sheet.GradingSummary.Aggregation.StdDevPercentage)
		result.Runs = append(result.Runs, RunRef{
			Profession:          profession,
			ExamNumber:          examNumber,
			ProcessingTimestamp: procTS,
			BenchmarkTimestamp:  benchTS,
			Judge:               judgeName,
		})
	}
}

// Scores reduces aggregated results to one number per model. With a
// single sample the per-run spread is reported; with several exams the
// sample standard deviation across per-exam means is used; otherwise
// the spread across judges.
func Scores(results []Result) []ModelScore {
	var scores []ModelScore

	examSet := map[string]bool{}
	for _, r := range results {
		for _, run := range r.Runs {
			examSet[run.Profession+"/"+run.ExamNumber] = true
		}
	}
	multiExam := len(examSet) > 1

	for _, r := range results {
		if len(r.Percentages) == 0 {
			continue
		}

		score := ModelScore{Model: r.Model, Samples: len(r.Percentages)}
		switch {
		case multiExam:
			perExam := map[string][]float64{}
			var order []string
			for i, run := range r.Runs {
				key := run.Profession + "/" + run.ExamNumber
				if _, seen := perExam[key]; !seen {
					order = append(order, key)
				}
				perExam[key] = append(perExam[key], r.Percentages[i])
			}
			examMeans := make([]float64, 0, len(order))
			for _, key := range order {
				examMeans = append(examMeans, mean(perExam[key]))
			}
			score.AveragePercentage = mean(examMeans)
			score.StdDev = sampleStdDev(examMeans)
		case len(r.Percentages) == 1:
			score.AveragePercentage = r.Percentages[0]
			score.StdDev = r.StdDevs[0]
		default:
			score.AveragePercentage = mean(r.Percentages)
			score.StdDev = sampleStdDev(r.Percentages)
		}
		scores = append(scores, score)
	}
	return scores
}

// SortByScore orders scores best first.
func SortByScore(scores []ModelScore) {
	slices.SortStableFunc(scores, func(a, b ModelScore) int {
		switch {
		case a.AveragePercentage > b.AveragePercentage:
			return -1
		case a.AveragePercentage < b.AveragePercentage:
			return 1
		default:
			return 0
		}
	})
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStdDev uses n-1 in the denominator; 0 for fewer than two
// samples.
func sampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
