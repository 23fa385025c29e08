package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vapkit/proctor/internal/archive"
	"github.com/vapkit/proctor/internal/audit"
	"github.com/vapkit/proctor/internal/evaluate"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/report"
	"github.com/vapkit/proctor/internal/rules"
	"github.com/vapkit/proctor/internal/trace"
)

var (
	evalRules   string
	evalTrace   string
	evalFormat  string
	evalAudit   string
	evalArchive string
	evalQuiet   bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalRules, "rules", "", "Path to rules YAML (required)")
	evaluateCmd.Flags().StringVar(&evalTrace, "trace", "", "Path to trace file, YAML or JSON (required)")
	evaluateCmd.Flags().StringVarP(&evalFormat, "format", "f", "text", "Report format (text|json)")
	evaluateCmd.Flags().StringVar(&evalAudit, "audit", "", "Append hash-chained evaluation entries to this JSONL file")
	evaluateCmd.Flags().StringVar(&evalArchive, "archive", "", "Persist the report into this SQLite database")
	evaluateCmd.Flags().BoolVarP(&evalQuiet, "quiet", "q", false, "Suppress per-action output, print only the report")
	evaluateCmd.MarkFlagRequired("rules")
	evaluateCmd.MarkFlagRequired("trace")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a recorded action trace against a rule set",
	Long: "Loads a rule set and a trace file, feeds each action through the\n" +
		"realtime checks in order, runs the ordering checks at the end, and\n" +
		"prints the final report.\n\n" +
		"Exit code 0 if the session passed, 1 if it failed.",
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	rs, hash, err := rules.LoadWithHash(evalRules)
	if err != nil {
		return err
	}

	doc, err := trace.Load(evalTrace)
	if err != nil {
		return err
	}

	opts := evaluate.Options{RulesHash: hash}
	if !evalQuiet {
		opts.Observer = &consoleObserver{w: cmd.OutOrStdout()}
	}

	if evalAudit != "" {
		log, err := audit.Open(evalAudit)
		if err != nil {
			return err
		}
		defer log.Close()
		opts.AuditLog = log
	}

	rep, sess, err := evaluate.Run(rs, doc, opts)
	if err != nil {
		return err
	}

	switch evalFormat {
	case "json":
		out, err := report.FormatJSON(rep)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	default:
		if !evalQuiet {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatText(rep))
	}

	if evalArchive != "" {
		store, err := archive.Open(evalArchive)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(sess.ID(), rep, hash); err != nil {
			return err
		}
	}

	if rep.Status != model.StatusPassed {
		os.Exit(1)
	}
	return nil
}
