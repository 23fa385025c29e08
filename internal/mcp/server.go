// Package mcp exposes the evaluator over the Model Context Protocol on
// stdio, so an agent harness can stream actions into a live session
// instead of recording a trace file first. No network ports are opened.
package mcp

import (
	"context"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/vapkit/proctor/internal/audit"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/rules"
	"github.com/vapkit/proctor/internal/session"
)

// Config holds MCP server configuration.
type Config struct {
	RulesPath string
	AuditPath string
}

// Server wraps the MCP SDK server around one live evaluation session.
// A new session starts automatically after a report is produced.
type Server struct {
	mcpServer *mcpsdk.Server
	rules     *rules.RuleSet
	rulesHash string
	auditLog  *audit.Log
	logger    *zap.Logger

	mu   sync.Mutex
	sess *session.Session
}

// New creates an MCP server with loaded rules and a fresh session.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	rs, hash, err := rules.LoadWithHash(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		rules:     rs,
		rulesHash: hash,
		logger:    logger,
	}

	if cfg.AuditPath != "" {
		s.auditLog, err = audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, err
		}
	}

	s.sess = s.newSession()

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "proctor",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) newSession() *session.Session {
	sess := session.New(s.rules)
	s.logger.Info("session started",
		zap.String("session_id", sess.ID()),
		zap.String("test_id", s.rules.TestID))
	return sess
}

func (s *Server) recordAudit(kind audit.EntryKind, actionType string, fired []model.Violation) {
	if s.auditLog == nil {
		return
	}

	ids := make([]string, 0, len(fired))
	for _, v := range fired {
		ids = append(ids, v.ConstraintID)
	}

	if err := s.auditLog.Record(audit.Entry{
		SessionID:  s.sess.ID(),
		Kind:       kind,
		ActionType: actionType,
		Violations: ids,
		Score:      s.sess.Score(),
		RulesHash:  s.rulesHash,
	}); err != nil {
		s.logger.Error("audit record", zap.Error(err))
	}
}

// registerTools adds the proctor tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "proctor_observe",
		Description: "Report one agent action for compliance checking. Returns violations fired by this action and the running score.",
	}, s.handleObserve)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "proctor_finalize",
		Description: "End the action stream and run the end-of-session ordering checks. No further actions are accepted afterwards.",
	}, s.handleFinalize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "proctor_report",
		Description: "Produce the final report for the finalized session and start a fresh session.",
	}, s.handleReport)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "proctor_status",
		Description: "Show the current session id, score, and violation count without changing state.",
	}, s.handleStatus)
}

func violationItems(vs []model.Violation) []ViolationItem {
	out := make([]ViolationItem, 0, len(vs))
	for _, v := range vs {
		out = append(out, ViolationItem{
			ID:      v.ConstraintID,
			Message: v.Message,
			Penalty: v.Penalty,
		})
	}
	return out
}
