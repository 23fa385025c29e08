package match

import (
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/rules"
)

// Sequence evaluates the full accumulated action log against every
// ordering constraint and returns the constraints that fired. Each
// required_sequence fires at most once: on the first step that cannot
// be located, remaining steps are not scanned.
func Sequence(rs *rules.RuleSet, log []model.Action) []*rules.Constraint {
	var fired []*rules.Constraint

	for i := range rs.Constraints {
		c := &rs.Constraints[i]
		if c.Type != rules.RequiredSequence {
			continue
		}
		if !stepsSatisfied(c.Steps, log) {
			fired = append(fired, c)
		}
	}

	return fired
}

// stepsSatisfied reports whether steps appear in the log as an in-order
// (not necessarily contiguous) subsequence. A linear cursor advances past
// each matched position; matched actions are never reused, so a repeated
// step name needs a matching number of occurrences in the log. An empty
// steps list is trivially satisfied.
func stepsSatisfied(steps []string, log []model.Action) bool {
	cursor := 0
	for _, step := range steps {
		found := false
		for i := cursor; i < len(log); i++ {
			if log[i].Type == step {
				cursor = i + 1
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
