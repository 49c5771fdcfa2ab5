package harness

import (
	"github.com/mereki/gambit/internal/board"
	"github.com/mereki/gambit/internal/core"
)

// TraceEvent is one canonical event as it appears in a scenario trace.
// Step is the 1-based flow step that produced the event; Seq is the event's
// position within that step's resolution.
type TraceEvent struct {
	Kind string `json:"kind"`
	Seq  int64  `json:"seq"`
	Step int    `json:"step"`
	Note string `json:"note,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: all assertions held and the
	// replay check matched.
	Pass bool `json:"pass"`

	// Trace contains every canonical event in application order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Log is the full canonical event log, for programmatic inspection.
	Log []core.Event `json:"-"`

	// Final is the board after the flow completed.
	Final *board.State `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends the events of one flow step to the trace.
func (r *Result) addTrace(step int, events []core.Event) {
	for _, ev := range events {
		r.Trace = append(r.Trace, TraceEvent{
			Kind: ev.Kind.String(),
			Seq:  ev.Seq,
			Step: step,
			Note: ev.Note,
		})
	}
}
