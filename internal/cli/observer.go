package cli

import (
	"fmt"
	"io"

	"github.com/vapkit/proctor/internal/model"
)

// consoleObserver surfaces evaluation events as they happen, the way a
// human proctor would narrate them. Violations print the moment a
// constraint fires, never batched into the final report.
type consoleObserver struct {
	w io.Writer
}

func (o *consoleObserver) ActionObserved(action model.Action) {
	fmt.Fprintf(o.w, "[PROCTOR] Observing action: %s\n", action.Type)
}

func (o *consoleObserver) ViolationDetected(v model.Violation, score int) {
	fmt.Fprintf(o.w, "\nVIOLATION: %s (-%d pts)\n", v.Message, v.Penalty)
}
