package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vapkit/proctor/internal/watch"
)

var (
	watchRules    string
	watchInbox    string
	watchOutbox   string
	watchAudit    string
	watchArchive  string
	watchPoll     bool
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchRules, "rules", "", "Path to rules YAML (required)")
	watchCmd.Flags().StringVar(&watchInbox, "inbox", "", "Directory to watch for trace files (required)")
	watchCmd.Flags().StringVar(&watchOutbox, "outbox", "", "Directory reports are written to (required)")
	watchCmd.Flags().StringVar(&watchAudit, "audit", "", "Append hash-chained evaluation entries to this JSONL file")
	watchCmd.Flags().StringVar(&watchArchive, "archive", "", "Persist reports into this SQLite database")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "Poll the inbox instead of using fsnotify")
	watchCmd.Flags().DurationVar(&watchInterval, "poll-interval", 0, "Polling interval (with --poll)")
	watchCmd.MarkFlagRequired("rules")
	watchCmd.MarkFlagRequired("inbox")
	watchCmd.MarkFlagRequired("outbox")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Evaluate trace files as they land in an inbox directory",
	Long: "Runs until interrupted. Trace files dropped into the inbox are scored\n" +
		"against the rule set and their reports written to the outbox as JSON.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	daemon, err := watch.New(watch.Config{
		RulesPath:    watchRules,
		Inbox:        watchInbox,
		Outbox:       watchOutbox,
		AuditPath:    watchAudit,
		ArchivePath:  watchArchive,
		PollMode:     watchPoll,
		PollInterval: watchInterval,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx)
}
