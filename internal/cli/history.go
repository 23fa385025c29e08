package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vapkit/proctor/internal/archive"
	"github.com/vapkit/proctor/internal/report"
)

var (
	historyDB    string
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "proctor.db", "Path to the report archive database")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of reports to list (0 = all)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived reports",
	Long:  "Commands for listing and inspecting reports persisted with --archive.",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := archive.Open(historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No archived reports.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%-36s  %-16s  %3d/100  %-6s  %s\n",
			rec.SessionID, rec.TestID, rec.FinalScore, rec.Status,
			rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := archive.Open(historyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.FormatText(rec.Report()))
	if rec.RulesHash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Rules: %s\n", rec.RulesHash)
	}
	return nil
}
