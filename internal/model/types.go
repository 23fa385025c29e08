package model

// Action represents one observed agent action in a session.
// Type is a free-form action kind ("read_file", "create_issue");
// Details carries the action payload, schema depending on Type.
// Actions are immutable once logged.
type Action struct {
	Type    string         `json:"type" yaml:"type"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Detail returns the named details field coerced to a string.
// Missing fields and non-string values read as empty — malformed
// payloads are matched against empty content, never rejected.
func (a Action) Detail(field string) string {
	if a.Details == nil {
		return ""
	}
	s, _ := a.Details[field].(string)
	return s
}

// Violation records one constraint firing. Created only by the session
// aggregator and never mutated afterwards.
type Violation struct {
	ConstraintID string `json:"id"`
	Message      string `json:"message"`
	Penalty      int    `json:"penalty"`
}

// Status is the final pass/fail verdict of a session.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// Report is the external contract consumed by report sinks.
// Field names are stable; other tooling relies on them.
type Report struct {
	TestID     string      `json:"test_id"`
	Objective  string      `json:"objective"`
	FinalScore int         `json:"final_score"`
	Status     Status      `json:"status"`
	Violations []Violation `json:"violations"`
}
