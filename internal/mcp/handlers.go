package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/vapkit/proctor/internal/audit"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/session"
)

// --- Input/Output types ---

// ObserveInput defines parameters for the proctor_observe tool.
type ObserveInput struct {
	Type    string         `json:"type" jsonschema:"action type, e.g. read_file or create_issue"`
	Details map[string]any `json:"details,omitempty" jsonschema:"action payload fields"`
}

// ViolationItem is one fired constraint in tool output.
type ViolationItem struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Penalty int    `json:"penalty"`
}

// ObserveOutput reports realtime firings for one action.
type ObserveOutput struct {
	SessionID  string          `json:"session_id"`
	Score      int             `json:"score"`
	Violations []ViolationItem `json:"violations,omitempty"`
}

// FinalizeInput is empty — no parameters needed.
type FinalizeInput struct{}

// FinalizeOutput reports sequence-check firings.
type FinalizeOutput struct {
	SessionID  string          `json:"session_id"`
	Score      int             `json:"score"`
	Violations []ViolationItem `json:"violations,omitempty"`
}

// ReportInput is empty — no parameters needed.
type ReportInput struct{}

// ReportOutput is the final report plus the id of the next session.
type ReportOutput struct {
	SessionID   string          `json:"session_id"`
	TestID      string          `json:"test_id"`
	Objective   string          `json:"objective"`
	FinalScore  int             `json:"final_score"`
	Status      string          `json:"status"`
	Violations  []ViolationItem `json:"violations"`
	NextSession string          `json:"next_session"`
}

// StatusInput is empty — no parameters needed.
type StatusInput struct{}

// StatusOutput is a read-only view of the live session.
type StatusOutput struct {
	SessionID  string `json:"session_id"`
	TestID     string `json:"test_id"`
	Score      int    `json:"score"`
	Actions    int    `json:"actions"`
	Violations int    `json:"violations"`
}

// --- Handlers ---

func (s *Server) handleObserve(ctx context.Context, req *mcpsdk.CallToolRequest, input ObserveInput) (*mcpsdk.CallToolResult, ObserveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fired, err := s.sess.Observe(model.Action{Type: input.Type, Details: input.Details})
	if err != nil {
		if errors.Is(err, session.ErrSessionFinalized) {
			return &mcpsdk.CallToolResult{IsError: true}, ObserveOutput{SessionID: s.sess.ID()}, nil
		}
		return nil, ObserveOutput{}, err
	}

	s.recordAudit(audit.KindAction, input.Type, fired)

	for _, v := range fired {
		s.logger.Warn("violation",
			zap.String("session_id", s.sess.ID()),
			zap.String("constraint_id", v.ConstraintID),
			zap.Int("penalty", v.Penalty))
	}

	return nil, ObserveOutput{
		SessionID:  s.sess.ID(),
		Score:      s.sess.Score(),
		Violations: violationItems(fired),
	}, nil
}

func (s *Server) handleFinalize(ctx context.Context, req *mcpsdk.CallToolRequest, input FinalizeInput) (*mcpsdk.CallToolResult, FinalizeOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fired, err := s.sess.Finalize()
	if err != nil {
		if errors.Is(err, session.ErrAlreadyFinalized) {
			return &mcpsdk.CallToolResult{IsError: true}, FinalizeOutput{SessionID: s.sess.ID()}, nil
		}
		return nil, FinalizeOutput{}, err
	}

	s.recordAudit(audit.KindFinalize, "", fired)

	return nil, FinalizeOutput{
		SessionID:  s.sess.ID(),
		Score:      s.sess.Score(),
		Violations: violationItems(fired),
	}, nil
}

func (s *Server) handleReport(ctx context.Context, req *mcpsdk.CallToolRequest, input ReportInput) (*mcpsdk.CallToolResult, ReportOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.sess.Report()
	if err != nil {
		return nil, ReportOutput{}, err
	}

	finished := s.sess.ID()
	s.logger.Info("session reported",
		zap.String("session_id", finished),
		zap.Int("final_score", rep.FinalScore),
		zap.String("status", string(rep.Status)))

	// Reported sessions are read-only; the next stream gets a fresh one.
	s.sess = s.newSession()

	return nil, ReportOutput{
		SessionID:   finished,
		TestID:      rep.TestID,
		Objective:   rep.Objective,
		FinalScore:  rep.FinalScore,
		Status:      string(rep.Status),
		Violations:  violationItems(rep.Violations),
		NextSession: s.sess.ID(),
	}, nil
}

func (s *Server) handleStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, StatusOutput{
		SessionID:  s.sess.ID(),
		TestID:     s.rules.TestID,
		Score:      s.sess.Score(),
		Actions:    len(s.sess.Log()),
		Violations: len(s.sess.Violations()),
	}, nil
}
