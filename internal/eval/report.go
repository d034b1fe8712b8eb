package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mlippuner/swissbench/internal/exam"
)

// Run aggregates results, prints a comparison table to w, and writes
// the report files into a timestamped directory under the eval data
// directory. It returns that directory.
func (p *Pipeline) Run(w io.Writer) (string, error) {
	results, err := p.Aggregate()
	if err != nil {
		return "", err
	}

	scores := Scores(results)
	if p.selection.Sort {
		SortByScore(scores)
	}
	if len(scores) == 0 {
		slog.Warn("no benchmark results matched the evaluation selection")
	}

	if err := renderTable(w, scores); err != nil {
		return "", err
	}

	timestamp := p.now().Format("20060102_150405")
	outDir := filepath.Join(p.evalDir, timestamp)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create eval dir: %w", err)
	}

	if err := exam.WriteJSON(filepath.Join(outDir, "model_scores.json"), scores); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(outDir, "model_scores.csv"), scores); err != nil {
		return "", err
	}
	if err := p.writeMetadata(filepath.Join(outDir, "evaluation_metadata.json"), timestamp, results); err != nil {
		return "", err
	}
	return outDir, nil
}

func renderTable(w io.Writer, scores []ModelScore) error {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader([]string{"Model", "Score", "Std Dev", "Samples"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
	)

	for _, s := range scores {
		if err := table.Append([]string{
			s.Model,
			formatPct(round2(s.AveragePercentage)),
			formatPct(round2(s.StdDev)),
			strconv.Itoa(s.Samples),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeCSV(path string, scores []ModelScore) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"model", "average_percentage", "std_dev", "samples"}); err != nil {
		return err
	}
	for _, s := range scores {
		row := []string{
			s.Model,
			strconv.FormatFloat(round2(s.AveragePercentage), 'f', 2, 64),
			strconv.FormatFloat(round2(s.StdDev), 'f', 2, 64),
			strconv.Itoa(s.Samples),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeMetadata records which benchmark runs fed the report, so a
// reader can trace every number back to a graded file.
func (p *Pipeline) writeMetadata(path, timestamp string, results []Result) error {
	used := map[string]RunRef{}
	for _, r := range results {
		for _, run := range r.Runs {
			key := run.Profession + "/" + run.ExamNumber + "/" + r.Model
			used[key] = run
		}
	}

	meta := map[string]any{
		"evaluation_timestamp":   timestamp,
		"configuration":          p.selection,
		"benchmarking_runs_used": used,
		"results":                results,
	}
	return exam.WriteJSON(path, meta)
}
