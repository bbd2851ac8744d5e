package journal

import (
	"context"
	"fmt"
)

// BeginRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: beginning the same run
// twice is a no-op.
func (j *Journal) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("begin run: empty run id")
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, spec_hash, label, start_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.SpecHash, run.Label, run.StartSeq)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// AppendEntry inserts an entry into its run.
// Uses ON CONFLICT(run_id, seq) DO NOTHING: a second write for the same
// seq is silently ignored.
//
// The run referenced by RunID must exist (foreign key constraint).
func (j *Journal) AppendEntry(ctx context.Context, e Entry) error {
	payload, err := marshalPayload(e.Payload)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries (run_id, seq, action_type, payload, state_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, e.RunID, e.Seq, e.Type, payload, e.StateHash)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}
