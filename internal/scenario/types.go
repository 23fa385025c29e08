// Package scenario asserts how a rule set scores recorded traces.
// Scenario files live next to the rules they exercise and run in CI to
// gate rule changes on expected verdicts.
package scenario

import "github.com/vapkit/proctor/internal/model"

// Expect is the asserted outcome of evaluating one case.
// Status is required; FinalScore and Violations are checked only when
// present (Violations is the exact firing order of constraint ids).
type Expect struct {
	Status     string   `yaml:"status"`
	FinalScore *int     `yaml:"final_score,omitempty"`
	Violations []string `yaml:"violations,omitempty"`
}

// Case is one recorded action stream plus its expected outcome.
type Case struct {
	Name    string         `yaml:"name"`
	Actions []model.Action `yaml:"actions"`
	Expect  Expect         `yaml:"expect"`
}

// Scenario is a named collection of cases against one rule set.
// Rules is a path relative to the scenario file; a rules path given on
// the command line takes precedence.
type Scenario struct {
	Name  string `yaml:"name"`
	Rules string `yaml:"rules,omitempty"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one case.
type CaseResult struct {
	Index      int      `json:"index"`
	Name       string   `json:"name"`
	Passed     bool     `json:"passed"`
	Status     string   `json:"status"`
	FinalScore int      `json:"final_score"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
