package rules

import (
	"fmt"
	"strings"
)

// Validate runs semantic checks a loaded rule set is never subjected to
// at session setup: duplicate ids, negative penalties, and type-specific
// fields that can never fire. Used by the lint command.
func Validate(rs *RuleSet) error {
	var problems []string

	if rs.TestID == "" {
		problems = append(problems, "test_id is empty")
	}
	if rs.Scoring.PassThreshold == nil {
		problems = append(problems, "scoring.pass_threshold is missing (report generation will fail)")
	}

	seen := make(map[string]bool)
	for i, c := range rs.Constraints {
		label := c.ID
		if label == "" {
			label = fmt.Sprintf("constraint #%d", i+1)
			problems = append(problems, fmt.Sprintf("%s: id is empty", label))
		}
		if seen[c.ID] && c.ID != "" {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", label))
		}
		seen[c.ID] = true

		if c.Penalty < 0 {
			problems = append(problems, fmt.Sprintf("%s: penalty %d is negative", label, c.Penalty))
		}

		switch c.Type {
		case NegativeRegex:
			if c.Pattern == "" {
				problems = append(problems, fmt.Sprintf("%s: negative_regex without pattern never fires", label))
			}
			if c.Location == "" {
				problems = append(problems, fmt.Sprintf("%s: negative_regex without location never fires", label))
			}
		case RequiredSequence:
			if len(c.Steps) == 0 {
				problems = append(problems, fmt.Sprintf("%s: required_sequence with no steps is trivially satisfied", label))
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown type %q is inert", label, c.Type))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("rule set has %d problem(s):\n  %s",
			len(problems), strings.Join(problems, "\n  "))
	}
	return nil
}
