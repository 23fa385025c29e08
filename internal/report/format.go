// Package report renders final session reports for sinks. The Report
// value itself is the contract; formatting is the sink's concern and
// lives here so every surface (CLI, watch outbox, archive) agrees.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vapkit/proctor/internal/model"
)

// FormatText renders a report as human-readable text.
func FormatText(r model.Report) string {
	var b strings.Builder

	rule := strings.Repeat("=", 40)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "PROCTOR REPORT: %s\n", r.TestID)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Objective: %s\n", r.Objective)
	fmt.Fprintf(&b, "Final Score: %d/100\n", r.FinalScore)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)

	if len(r.Violations) > 0 {
		fmt.Fprintf(&b, "\nViolations:\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&b, " - [%s] %s (-%d)\n", v.ConstraintID, v.Message, v.Penalty)
		}
	} else {
		fmt.Fprintf(&b, "\nNo violations detected.\n")
	}
	fmt.Fprintln(&b, rule)

	return b.String()
}

// FormatJSON renders a report as indented JSON.
func FormatJSON(r model.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}
