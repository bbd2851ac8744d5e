package harness

import (
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/reducer"
)

// TraceEvent records one scenario step.
type TraceEvent struct {
	// Seq is the store's commit seq after the step.
	Seq int64 `json:"seq"`

	// Type is the dispatched action type, or "batch".
	Type string `json:"type"`

	// Payload is the dispatched payload. Nil for batches and empty payloads.
	Payload ir.IRObject `json:"payload,omitempty"`

	// Actions lists the action types of a batch step.
	Actions []string `json:"actions,omitempty"`

	// Error is the error kind the step produced, empty on success.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the store's final state.
	State reducer.State `json:"state,omitempty"`

	// Commits is the number of committed dispatches.
	Commits int64 `json:"commits"`

	// Notifications is the number of listener notifications.
	Notifications int `json:"notifications"`

	// RunID is the journal run id, empty unless the run was journaled.
	RunID string `json:"run_id,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
