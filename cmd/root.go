package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlippuner/swissbench/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "swissbench",
	Short: "Benchmark LLMs on Swiss professional exams",
	Long: "Swissbench generates model answers for processed Swiss professional exams,\n" +
		"grades them with judge models, and aggregates the results.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(fixGradingCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
