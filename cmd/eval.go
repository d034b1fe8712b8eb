package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Compare model performance across benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		outDir, err := eval.NewPipeline(cfg).Run(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", outDir)
		return nil
	},
}
