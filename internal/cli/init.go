package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vapkit/proctor/internal/rules"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Generate a commented starter rules file",
	Long:  "Writes a starter rule document (default: proctor_rules.yaml) with\nboth constraint types filled in and comments explaining each field.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := "proctor_rules.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(rules.DefaultRulesYAML()), 0644); err != nil {
		return fmt.Errorf("write rules file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
