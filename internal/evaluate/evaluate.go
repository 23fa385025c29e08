// Package evaluate drives one full session over a recorded trace:
// observe every action in order, run the sequence check, produce the
// report. The CLI, the watch daemon, and the MCP server all funnel
// through the same flow.
package evaluate

import (
	"fmt"

	"github.com/vapkit/proctor/internal/audit"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/rules"
	"github.com/vapkit/proctor/internal/session"
	"github.com/vapkit/proctor/internal/trace"
)

// Options configures one evaluation run. All fields are optional.
type Options struct {
	SessionID string           // overrides the trace document's session id
	RulesHash string           // recorded into audit entries
	AuditLog  *audit.Log       // hash-chained trail of the run
	Observer  session.Observer // eager per-action / per-violation surfacing
}

// Run evaluates a trace document against a rule set and returns the
// final report plus the finished session. Each action is fully
// processed — logged, matched, audited — before the next is accepted.
func Run(rs *rules.RuleSet, doc *trace.Document, opts Options) (model.Report, *session.Session, error) {
	var sessOpts []session.Option
	id := opts.SessionID
	if id == "" {
		id = doc.Session
	}
	if id != "" {
		sessOpts = append(sessOpts, session.WithID(id))
	}
	if opts.Observer != nil {
		sessOpts = append(sessOpts, session.WithObserver(opts.Observer))
	}

	sess := session.New(rs, sessOpts...)

	for _, action := range doc.Actions {
		fired, err := sess.Observe(action)
		if err != nil {
			return model.Report{}, nil, err
		}
		if err := record(opts, sess, audit.KindAction, action.Type, fired); err != nil {
			return model.Report{}, nil, err
		}
	}

	fired, err := sess.Finalize()
	if err != nil {
		return model.Report{}, nil, err
	}
	if err := record(opts, sess, audit.KindFinalize, "", fired); err != nil {
		return model.Report{}, nil, err
	}

	rep, err := sess.Report()
	if err != nil {
		return model.Report{}, nil, fmt.Errorf("generate report: %w", err)
	}
	return rep, sess, nil
}

func record(opts Options, sess *session.Session, kind audit.EntryKind, actionType string, fired []model.Violation) error {
	if opts.AuditLog == nil {
		return nil
	}

	ids := make([]string, 0, len(fired))
	for _, v := range fired {
		ids = append(ids, v.ConstraintID)
	}

	return opts.AuditLog.Record(audit.Entry{
		SessionID:  sess.ID(),
		Kind:       kind,
		ActionType: actionType,
		Violations: ids,
		Score:      sess.Score(),
		RulesHash:  opts.RulesHash,
	})
}
