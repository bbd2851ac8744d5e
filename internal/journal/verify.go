package journal

import (
	"context"
	"fmt"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Mismatch describes one entry that did not replay to the recorded state.
type Mismatch struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`
	Want string `json:"want,omitempty"` // recorded state hash
	Got  string `json:"got,omitempty"`  // replayed state hash
	Err  string `json:"error,omitempty"`
}

// Report is the outcome of Verify.
type Report struct {
	RunID      string     `json:"run_id"`
	Entries    int        `json:"entries"`
	Mismatches []Mismatch `json:"mismatches"`
}

// OK reports whether every entry replayed to its recorded state.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify re-dispatches the entries of a run into s, in seq order, and
// compares the state after each dispatch with the recorded state hash.
//
// s must be a fresh store built from the reducers the run is checked
// against. A dispatch error or a gap in the recorded seqs is reported as a
// mismatch; replay continues with the next entry. The returned error is
// reserved for journal failures.
func Verify[S any](ctx context.Context, j *Journal, runID string, s *store.Store[S]) (*Report, error) {
	run, err := j.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run %s: %w", runID, err)
	}
	entries, err := j.ReadEntries(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run %s: %w", runID, err)
	}

	report := &Report{RunID: runID, Entries: len(entries), Mismatches: []Mismatch{}}
	for _, e := range entries {
		m := Mismatch{Seq: e.Seq, Type: e.Type, Want: e.StateHash}

		if _, err := s.Dispatch(e.Action()); err != nil {
			m.Err = err.Error()
			report.Mismatches = append(report.Mismatches, m)
			continue
		}
		if want := run.StartSeq + s.Seq(); e.Seq != want {
			m.Err = fmt.Sprintf("recorded seq %d, replay reached seq %d", e.Seq, want)
			report.Mismatches = append(report.Mismatches, m)
			continue
		}

		got, err := ir.StateHash(s.GetState())
		if err != nil {
			m.Err = err.Error()
			report.Mismatches = append(report.Mismatches, m)
			continue
		}
		if got != e.StateHash {
			m.Got = got
			report.Mismatches = append(report.Mismatches, m)
		}
	}
	return report, nil
}
