package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vapkit/proctor/internal/evaluate"
	"github.com/vapkit/proctor/internal/rules"
	"github.com/vapkit/proctor/internal/trace"
)

// Run evaluates every case against the rule set. Each case gets a fresh
// session; cases are independent.
func Run(s *Scenario, rs *rules.RuleSet) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		cr := runCase(i, c, rs)
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func runCase(index int, c Case, rs *rules.RuleSet) CaseResult {
	cr := CaseResult{
		Index: index + 1,
		Name:  c.Name,
	}

	doc := &trace.Document{
		Session: fmt.Sprintf("scenario-%d", index+1),
		Actions: c.Actions,
	}

	rep, _, err := evaluate.Run(rs, doc, evaluate.Options{})
	if err != nil {
		cr.Mismatches = append(cr.Mismatches, fmt.Sprintf("evaluation failed: %v", err))
		return cr
	}

	cr.Status = string(rep.Status)
	cr.FinalScore = rep.FinalScore

	if !strings.EqualFold(c.Expect.Status, string(rep.Status)) {
		cr.Mismatches = append(cr.Mismatches,
			fmt.Sprintf("status: expected %s, got %s", strings.ToUpper(c.Expect.Status), rep.Status))
	}
	if c.Expect.FinalScore != nil && *c.Expect.FinalScore != rep.FinalScore {
		cr.Mismatches = append(cr.Mismatches,
			fmt.Sprintf("final_score: expected %d, got %d", *c.Expect.FinalScore, rep.FinalScore))
	}
	if c.Expect.Violations != nil {
		got := make([]string, 0, len(rep.Violations))
		for _, v := range rep.Violations {
			got = append(got, v.ConstraintID)
		}
		if !equalStrings(c.Expect.Violations, got) {
			cr.Mismatches = append(cr.Mismatches,
				fmt.Sprintf("violations: expected [%s], got [%s]",
					strings.Join(c.Expect.Violations, ", "), strings.Join(got, ", ")))
		}
	}

	cr.Passed = len(cr.Mismatches) == 0
	return cr
}

// LoadAndRun loads a scenario YAML file, resolves its rule set, and runs.
// rulesPath overrides the scenario's own rules reference when non-empty.
func LoadAndRun(path, rulesPath string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	resolved := rulesPath
	if resolved == "" {
		if s.Rules == "" {
			return nil, fmt.Errorf("scenario %s names no rules and none given on the command line", path)
		}
		resolved = s.Rules
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(path), resolved)
		}
	}

	rs, err := rules.Load(resolved)
	if err != nil {
		return nil, err
	}

	result := Run(&s, rs)
	result.File = path

	return result, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
