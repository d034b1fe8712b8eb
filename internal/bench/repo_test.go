package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProcessedRun(t *testing.T, root, profession, number, timestamp string, withSheet bool) {
	t.Helper()
	dir := filepath.Join(root, profession, number, timestamp)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withSheet {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_sheet.json"), []byte(`{"questions": []}`), 0o644))
	}
}

func TestListLatestExamsPicksNewestRunWithSheet(t *testing.T) {
	root := t.TempDir()
	writeProcessedRun(t, root, "Elektroinstallateur", "1", "20240101_120000", true)
	writeProcessedRun(t, root, "Elektroinstallateur", "1", "20240301_090000", true)
	// Newest run lacks a sheet and must be ignored.
	writeProcessedRun(t, root, "Elektroinstallateur", "1", "20240401_090000", false)

	repo := NewRepository(root, filepath.Join(root, "raw"), nil, nil)
	exams, err := repo.ListLatestExams()
	require.NoError(t, err)
	require.Len(t, exams, 1)

	ex := exams[0]
	assert.Equal(t, "Elektroinstallateur", ex.Profession)
	assert.Equal(t, "1", ex.ExamNumber)
	assert.Equal(t, "20240301_090000", ex.Timestamp)
	assert.Equal(t, "Elektroinstallateur/1", ex.ExamID())
	assert.Equal(t, filepath.Join(root, "Elektroinstallateur", "1", "20240301_090000"), ex.ProcessedDir)
	assert.Equal(t, filepath.Join(root, "raw", "Elektroinstallateur", "1", "exam"), ex.RawExamDir)
}

func TestListLatestExamsFilters(t *testing.T) {
	root := t.TempDir()
	writeProcessedRun(t, root, "Elektroinstallateur", "1", "20240101_120000", true)
	writeProcessedRun(t, root, "Elektroinstallateur", "2", "20240101_120000", true)
	writeProcessedRun(t, root, "Gaertner", "1", "20240101_120000", true)

	repo := NewRepository(root, root, []string{"Elektroinstallateur"}, []string{"2"})
	exams, err := repo.ListLatestExams()
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "Elektroinstallateur/2", exams[0].ExamID())
}

func TestListLatestExamsSortedAndSkipsEmpty(t *testing.T) {
	root := t.TempDir()
	writeProcessedRun(t, root, "Gaertner", "1", "20240101_120000", true)
	writeProcessedRun(t, root, "Elektroinstallateur", "2", "20240101_120000", true)
	writeProcessedRun(t, root, "Elektroinstallateur", "1", "20240101_120000", true)
	// Exam with no valid run at all.
	writeProcessedRun(t, root, "Koch", "1", "20240101_120000", false)

	repo := NewRepository(root, root, nil, nil)
	exams, err := repo.ListLatestExams()
	require.NoError(t, err)
	require.Len(t, exams, 3)
	assert.Equal(t, "Elektroinstallateur/1", exams[0].ExamID())
	assert.Equal(t, "Elektroinstallateur/2", exams[1].ExamID())
	assert.Equal(t, "Gaertner/1", exams[2].ExamID())
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "openai__gpt-4o", SanitizeName("openai/gpt-4o"))
	assert.Equal(t, "model_v2_beta_1", SanitizeName("model:v2 beta:1"))
	assert.Equal(t, "plain", SanitizeName("plain"))
}
