package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proctor",
	Short: "Policy-compliance evaluator for agent action traces",
	Long: "Scores recorded agent action streams against declarative constraints:\n" +
		"per-action checks as the stream arrives, ordering checks at session end,\n" +
		"and a pass/fail report with itemized violations.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
