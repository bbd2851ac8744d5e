package journal

import "github.com/roach88/statecore/internal/ir"

// Run is one recording session of a store.
type Run struct {
	ID       string `json:"id"`
	SpecHash string `json:"spec_hash,omitempty"`
	Label    string `json:"label,omitempty"`
	StartSeq int64  `json:"start_seq"` // store seq when recording began
}

// Entry is one committed dispatch.
type Entry struct {
	RunID     string      `json:"run_id"`
	Seq       int64       `json:"seq"`
	Type      string      `json:"type"`
	Payload   ir.IRObject `json:"payload"`
	StateHash string      `json:"state_hash"`
}

// Action returns the entry's action in plain form.
func (e Entry) Action() ir.PlainAction {
	return ir.PlainAction{Type: e.Type, Payload: e.Payload}
}
