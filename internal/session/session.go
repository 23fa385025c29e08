// Package session owns the evaluation state for one action stream:
// the immutable rule set, the append-only action log, the running score,
// and the ordered violation list. One Session per evaluation, no
// process-wide state; independent sessions can run in parallel so long
// as each instance stays on a single goroutine.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vapkit/proctor/internal/match"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/rules"
)

// InitialScore is the score every session starts from.
const InitialScore = 100

var (
	// ErrSessionFinalized is returned by Observe after Finalize has run.
	ErrSessionFinalized = errors.New("session already finalized; no further actions accepted")
	// ErrAlreadyFinalized is returned by a second Finalize call.
	ErrAlreadyFinalized = errors.New("session already finalized")
	// ErrNotFinalized is returned by Report before Finalize has run.
	ErrNotFinalized = errors.New("session not finalized; run the sequence check first")
)

// MissingThresholdError is fatal to report generation only: the rule set
// lacks scoring.pass_threshold, so no verdict can be computed. The
// evaluation that already happened stays intact.
type MissingThresholdError struct {
	TestID string
}

func (e *MissingThresholdError) Error() string {
	return fmt.Sprintf("rule set %q has no scoring.pass_threshold; cannot compute verdict", e.TestID)
}

// Observer receives evaluation events as they happen. ViolationDetected
// is called eagerly, at the moment a constraint fires, never batched.
type Observer interface {
	ActionObserved(action model.Action)
	ViolationDetected(v model.Violation, score int)
}

type phase int

const (
	observing phase = iota
	finalized
)

// Session evaluates one action stream against one rule set.
type Session struct {
	id       string
	rules    *rules.RuleSet
	log      []model.Action
	score    int
	fired    []model.Violation
	observer Observer
	phase    phase
}

// Option configures a Session at creation time.
type Option func(*Session)

// WithID sets an explicit session ID instead of a generated one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithObserver attaches an Observer for eager event surfacing.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// New creates a Session over an already-loaded rule set.
func New(rs *rules.RuleSet, opts ...Option) *Session {
	s := &Session{
		rules: rs,
		score: InitialScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Rules returns the immutable rule set this session evaluates against.
func (s *Session) Rules() *rules.RuleSet { return s.rules }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Log returns a copy of the action log in insertion order.
func (s *Session) Log() []model.Action {
	out := make([]model.Action, len(s.log))
	copy(out, s.log)
	return out
}

// Violations returns a copy of the recorded violations in firing order.
func (s *Session) Violations() []model.Violation {
	out := make([]model.Violation, len(s.fired))
	copy(out, s.fired)
	return out
}

// Observe appends an action to the log and runs the realtime check.
// Each fired constraint is registered and surfaced before Observe
// returns; the returned violations are those fired by this action.
func (s *Session) Observe(action model.Action) ([]model.Violation, error) {
	if s.phase != observing {
		return nil, ErrSessionFinalized
	}

	s.log = append(s.log, action)
	if s.observer != nil {
		s.observer.ActionObserved(action)
	}

	return s.register(match.Realtime(s.rules, action)), nil
}

// Finalize runs the sequence check once over the full log and returns
// the violations it fired. The session accepts no actions afterwards.
func (s *Session) Finalize() ([]model.Violation, error) {
	if s.phase != observing {
		return nil, ErrAlreadyFinalized
	}
	s.phase = finalized

	return s.register(match.Sequence(s.rules, s.log)), nil
}

// Report computes the final verdict from session state. Pure read:
// calling it repeatedly without further logging yields identical values.
func (s *Session) Report() (model.Report, error) {
	if s.phase != finalized {
		return model.Report{}, ErrNotFinalized
	}

	threshold, ok := s.rules.PassThreshold()
	if !ok {
		return model.Report{}, &MissingThresholdError{TestID: s.rules.TestID}
	}

	status := model.StatusFailed
	if s.score >= threshold {
		status = model.StatusPassed
	}

	return model.Report{
		TestID:     s.rules.TestID,
		Objective:  s.rules.Objective,
		FinalScore: s.score,
		Status:     status,
		Violations: s.Violations(),
	}, nil
}

// register deducts penalties and appends violation records in firing
// order. Deterministic, no error conditions: score = max(0, score-penalty),
// never retracted, duplicates preserved.
func (s *Session) register(fired []*rules.Constraint) []model.Violation {
	if len(fired) == 0 {
		return nil
	}

	out := make([]model.Violation, 0, len(fired))
	for _, c := range fired {
		s.score -= c.Penalty
		if s.score < 0 {
			s.score = 0
		}

		v := model.Violation{
			ConstraintID: c.ID,
			Message:      c.Message,
			Penalty:      c.Penalty,
		}
		s.fired = append(s.fired, v)
		out = append(out, v)

		if s.observer != nil {
			s.observer.ViolationDetected(v, s.score)
		}
	}
	return out
}
