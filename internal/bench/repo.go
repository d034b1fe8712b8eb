// Package bench orchestrates benchmark runs: it discovers processed
// exams, generates model answers, grades them across judges and runs,
// and writes the graded results tree.
package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// ProcessedExam is a single processed exam run ready for benchmarking.
type ProcessedExam struct {
	Profession   string
	ExamNumber   string
	Timestamp    string
	ProcessedDir string
	RawExamDir   string
}

// ExamID identifies the exam independently of the processing run.
func (e ProcessedExam) ExamID() string {
	return e.Profession + "/" + e.ExamNumber
}

// Repository discovers processed exams under the processed data
// directory, laid out as <profession>/<exam number>/<timestamp>/.
type Repository struct {
	processedRoot string
	rawRoot       string
	professions   []string
	examNumbers   []string
}

// NewRepository creates a repository. Empty filter slices match
// everything.
func NewRepository(processedRoot, rawRoot string, professions, examNumbers []string) *Repository {
	return &Repository{
		processedRoot: processedRoot,
		rawRoot:       rawRoot,
		professions:   professions,
		examNumbers:   examNumbers,
	}
}

// ListLatestExams returns the newest processed run per exam that
// contains an answer_sheet.json, sorted by profession, exam number,
// and timestamp.
func (r *Repository) ListLatestExams() ([]ProcessedExam, error) {
	professionDirs, err := os.ReadDir(r.processedRoot)
	if err != nil {
		return nil, fmt.Errorf("read processed dir %s: %w", r.processedRoot, err)
	}

	var exams []ProcessedExam
	for _, professionDir := range professionDirs {
		if !professionDir.IsDir() {
			continue
		}
		profession := professionDir.Name()
		if len(r.professions) > 0 && !slices.Contains(r.professions, profession) {
			continue
		}

		numberDirs, err := os.ReadDir(filepath.Join(r.processedRoot, profession))
		if err != nil {
			return nil, fmt.Errorf("read profession dir %s: %w", profession, err)
		}
		for _, numberDir := range numberDirs {
			if !numberDir.IsDir() {
				continue
			}
			examNumber := numberDir.Name()
			if len(r.examNumbers) > 0 && !slices.Contains(r.examNumbers, examNumber) {
				continue
			}

			latest, err := r.latestRunWithSheet(filepath.Join(r.processedRoot, profession, examNumber))
			if err != nil {
				return nil, err
			}
			if latest == "" {
				continue
			}

			exams = append(exams, ProcessedExam{
				Profession:   profession,
				ExamNumber:   examNumber,
				Timestamp:    latest,
				ProcessedDir: filepath.Join(r.processedRoot, profession, examNumber, latest),
				RawExamDir:   filepath.Join(r.rawRoot, profession, examNumber, "exam"),
			})
		}
	}

	sort.Slice(exams, func(i, j int) bool {
		a, b := exams[i], exams[j]
		if a.Profession != b.Profession {
			return a.Profession < b.Profession
		}
		if a.ExamNumber != b.ExamNumber {
			return a.ExamNumber < b.ExamNumber
		}
		return a.Timestamp < b.Timestamp
	})
	return exams, nil
}

// latestRunWithSheet returns the lexically greatest run directory that
// holds an answer_sheet.json, or "" when none does. Run timestamps
// sort lexically because of their fixed format.
func (r *Repository) latestRunWithSheet(examDir string) (string, error) {
	entries, err := os.ReadDir(examDir)
	if err != nil {
		return "", fmt.Errorf("read exam dir %s: %w", examDir, err)
	}

	latest := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sheet := filepath.Join(examDir, entry.Name(), "answer_sheet.json")
		if _, err := os.Stat(sheet); err != nil {
			continue
		}
		if entry.Name() > latest {
			latest = entry.Name()
		}
	}
	return latest, nil
}
