package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vapkit/proctor/internal/mcp"
)

var (
	mcpRules string
	mcpAudit string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpRules, "rules", "", "Path to rules YAML (required)")
	mcpCmd.Flags().StringVar(&mcpAudit, "audit", "", "Append hash-chained evaluation entries to this JSONL file")
	mcpCmd.MarkFlagRequired("rules")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the evaluator over MCP on stdio",
	Long: "Exposes proctor_observe, proctor_finalize, proctor_report, and\n" +
		"proctor_status tools so an agent harness can stream actions into a\n" +
		"live session. Speaks MCP over stdio; no network ports are opened.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the MCP protocol; logs must go elsewhere.
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	server, err := mcp.New(mcp.Config{
		RulesPath: mcpRules,
		AuditPath: mcpAudit,
	}, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
