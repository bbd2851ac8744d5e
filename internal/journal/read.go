package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoRuns is returned by LatestRun when the journal is empty.
var ErrNoRuns = errors.New("journal has no runs")

// ReadRun retrieves a run by id.
// Returns sql.ErrNoRows if not found.
func (j *Journal) ReadRun(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, spec_hash, label, start_seq
		FROM runs
		WHERE id = ?
	`, id)

	var r Run
	if err := row.Scan(&r.ID, &r.SpecHash, &r.Label, &r.StartSeq); err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns all runs, oldest first.
// Returns an empty slice (not nil) if there are none.
func (j *Journal) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, spec_hash, label, start_seq
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SpecHash, &r.Label, &r.StartSeq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently created run.
// Returns ErrNoRuns if the journal is empty.
func (j *Journal) LatestRun(ctx context.Context) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, spec_hash, label, start_seq
		FROM runs
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`)

	var r Run
	err := row.Scan(&r.ID, &r.SpecHash, &r.Label, &r.StartSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// ReadEntries returns the entries of a run ordered by seq.
// Returns an empty slice (not nil) if the run has no entries.
func (j *Journal) ReadEntries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, action_type, payload, state_hash
		FROM entries
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			payload string
		)
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Type, &payload, &e.StateHash); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Payload, err = unmarshalPayload(payload); err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// CountEntries returns the number of entries in a run.
func (j *Journal) CountEntries(ctx context.Context, runID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
