package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/exam"
)

var fixGradingCmd = &cobra.Command{
	Use:   "fix-grading <graded_answers.json>",
	Short: "Recompute aggregates and the grading summary of a graded sheet",
	Long: "Recomputes per-question averages and the exam-level grading summary from\n" +
		"the judgments stored in the file, then writes the file back in place.\n" +
		"Running it twice leaves the file unchanged.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		sheet, err := exam.ReadSheet(path)
		if err != nil {
			return err
		}

		summary := exam.Recompute(sheet)
		if err := exam.WriteSheet(path, sheet); err != nil {
			return err
		}

		out, err := exam.MarshalIndent(summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated grading summary for %s:\n%s", path, out)
		return nil
	},
}
