package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vapkit/proctor/internal/rules"
)

var lintRules string

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().StringVar(&lintRules, "rules", "", "Path to rules YAML (required)")
	lintCmd.MarkFlagRequired("rules")
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check a rule set for semantic problems",
	Long: "Loads a rule document and reports duplicate ids, negative penalties,\n" +
		"inert constraints, and a missing pass threshold. Session setup never\n" +
		"runs these checks; use lint in CI or before distributing rules.",
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	rs, err := rules.Load(lintRules)
	if err != nil {
		return err
	}

	if err := rules.Validate(rs); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d constraints)\n", rs.TestID, len(rs.Constraints))
	return nil
}
