package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM request counts, tokens, and cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.RunLogPath)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer st.Close()

		totals, err := st.Totals(cmd.Context(), model)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if model != "" {
			fmt.Fprintf(out, "Model:         %s\n", model)
		}
		fmt.Fprintf(out, "Requests:      %d (%d failed)\n", totals.Requests, totals.Failures)
		fmt.Fprintf(out, "Input tokens:  %d\n", totals.InputTokens)
		fmt.Fprintf(out, "Output tokens: %d\n", totals.OutputTokens)
		fmt.Fprintf(out, "Est. cost:     $%.4f\n", totals.CostUSD)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("model", "m", "", "Filter by model ID")
}
