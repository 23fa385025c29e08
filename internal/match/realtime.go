// Package match implements the two constraint matchers: the realtime
// check run per action and the sequence check run once at session end.
// Matchers never fail — they only report which constraints fired.
package match

import (
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/rules"
)

// Realtime evaluates one incoming action against every immediate
// constraint, in rule-set order, and returns the constraints that fired.
// Only negative_regex participates; other types are ignored in this pass.
func Realtime(rs *rules.RuleSet, action model.Action) []*rules.Constraint {
	var fired []*rules.Constraint

	for i := range rs.Constraints {
		c := &rs.Constraints[i]
		if c.Type != rules.NegativeRegex {
			continue
		}
		if !c.AppliesTo(action.Type) {
			continue
		}
		if c.PatternMatches(action.Detail(c.Field())) {
			fired = append(fired, c)
		}
	}

	return fired
}
