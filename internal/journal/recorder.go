package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Recorder writes every commit of a store to a journal run.
// It implements store.CommitObserver; install it with
// store.WithCommitObserver.
//
// Commits happen on the store's goroutine and cannot fail, so write errors
// are logged and retained: Err returns the first one. Later commits are
// still attempted.
type Recorder[S any] struct {
	journal *Journal
	ctx     context.Context
	run     Run
	logger  *slog.Logger

	written int
	err     error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*recorderConfig)

type recorderConfig struct {
	ids      IDGenerator
	specHash string
	label    string
	startSeq int64
	logger   *slog.Logger
}

// WithIDGenerator sets the run id generator. Defaults to UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) RecorderOption {
	return func(c *recorderConfig) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithSpecHash tags the run with the hash of the reducer specs in use.
func WithSpecHash(hash string) RecorderOption {
	return func(c *recorderConfig) {
		c.specHash = hash
	}
}

// WithLabel sets a free-form run label.
func WithLabel(label string) RecorderOption {
	return func(c *recorderConfig) {
		c.label = label
	}
}

// WithStartSeq records the store's seq at the time recording begins, for
// recorders attached to a store that has already committed actions.
func WithStartSeq(seq int64) RecorderOption {
	return func(c *recorderConfig) {
		c.startSeq = seq
	}
}

// WithRecorderLogger sets the logger. Defaults to a discarding logger.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(c *recorderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRecorder begins a new run in j and returns a recorder appending to it.
// ctx is used for every write the recorder makes.
func NewRecorder[S any](ctx context.Context, j *Journal, opts ...RecorderOption) (*Recorder[S], error) {
	cfg := &recorderConfig{
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	run := Run{
		ID:       cfg.ids.Generate(),
		SpecHash: cfg.specHash,
		Label:    cfg.label,
		StartSeq: cfg.startSeq,
	}
	if err := j.BeginRun(ctx, run); err != nil {
		return nil, err
	}
	cfg.logger.Debug("journal run started", "run", run.ID, "spec_hash", run.SpecHash)

	return &Recorder[S]{
		journal: j,
		ctx:     ctx,
		run:     run,
		logger:  cfg.logger,
	}, nil
}

// Run returns the run being recorded.
func (r *Recorder[S]) Run() Run {
	return r.run
}

// Written returns the number of entries written successfully.
func (r *Recorder[S]) Written() int {
	return r.written
}

// Err returns the first write error, if any.
func (r *Recorder[S]) Err() error {
	return r.err
}

// OnCommit implements store.CommitObserver.
func (r *Recorder[S]) OnCommit(c store.Commit[S]) {
	if err := r.record(c); err != nil {
		r.logger.Error("journal write failed",
			"run", r.run.ID,
			"seq", c.Seq,
			"type", c.Action.ActionType(),
			"error", err,
		)
		if r.err == nil {
			r.err = err
		}
		return
	}
	r.written++
}

func (r *Recorder[S]) record(c store.Commit[S]) error {
	plain, err := ir.ToPlain(c.Action)
	if err != nil {
		return fmt.Errorf("record seq %d: %w", c.Seq, err)
	}
	hash, err := ir.StateHash(c.State)
	if err != nil {
		return fmt.Errorf("record seq %d: %w", c.Seq, err)
	}
	return r.journal.AppendEntry(r.ctx, Entry{
		RunID:     r.run.ID,
		Seq:       c.Seq,
		Type:      plain.Type,
		Payload:   plain.Payload,
		StateHash: hash,
	})
}
