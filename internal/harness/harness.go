package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/statecore/internal/compiler"
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/journal"
	"github.com/roach88/statecore/internal/middleware"
	"github.com/roach88/statecore/internal/reducer"
	"github.com/roach88/statecore/internal/store"
	"github.com/roach88/statecore/internal/testutil"
)

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	journal *journal.Journal
	ids     journal.IDGenerator
}

// WithLogger sets the logger used by the store and its Logger middleware.
// Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithJournal records the run's commits in j. The run id comes from ids;
// a nil ids uses UUIDv7 run ids.
func WithJournal(j *journal.Journal, ids journal.IDGenerator) RunOption {
	return func(c *runConfig) {
		c.journal = j
		c.ids = ids
	}
}

// runner holds the per-scenario store and its recorders.
type runner struct {
	store    *store.Store[reducer.State]
	listener *testutil.ListenerRecorder[reducer.State]
	recorder *journal.Recorder[reducer.State]
	result   *Result
}

// Run executes a scenario against a fresh store and returns the result.
//
// Execution flow:
//  1. Compile every slice spec in scenario.Specs
//  2. Build a store with Recoverer, Thunk and Logger middleware
//  3. Subscribe a recording listener
//  4. Dispatch each step, checking its expected error kind
//  5. Evaluate assertions against the final state
//
// A returned error means the scenario could not be executed (bad specs,
// journal failure). Step and assertion failures are reported in the
// Result.
func Run(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := &runConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}

	bundle, errs := compiler.LoadDir(scenario.Specs, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("loading specs for %s: %w", scenario.Name, errors.Join(errs...))
	}
	root, err := bundle.Reducer()
	if err != nil {
		return nil, fmt.Errorf("building reducer for %s: %w", scenario.Name, err)
	}

	storeOpts := []store.Option[reducer.State]{
		store.WithLogger[reducer.State](cfg.logger),
		store.WithEnhancer(middleware.Apply(
			middleware.Recoverer[reducer.State](),
			middleware.Thunk[reducer.State](),
			middleware.Logger[reducer.State](cfg.logger),
		)),
	}

	r := &runner{result: NewResult()}

	if cfg.journal != nil {
		specHash, err := bundle.Hash()
		if err != nil {
			return nil, fmt.Errorf("hashing specs for %s: %w", scenario.Name, err)
		}
		recOpts := []journal.RecorderOption{
			journal.WithSpecHash(specHash),
			journal.WithLabel(scenario.Name),
			journal.WithRecorderLogger(cfg.logger),
		}
		if cfg.ids != nil {
			recOpts = append(recOpts, journal.WithIDGenerator(cfg.ids))
		}
		r.recorder, err = journal.NewRecorder[reducer.State](ctx, cfg.journal, recOpts...)
		if err != nil {
			return nil, fmt.Errorf("starting journal run for %s: %w", scenario.Name, err)
		}
		storeOpts = append(storeOpts, store.WithCommitObserver[reducer.State](r.recorder))
		r.result.RunID = r.recorder.Run().ID
	}

	r.store, err = store.New(root, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating store for %s: %w", scenario.Name, err)
	}
	r.listener = testutil.NewListenerRecorder(r.store.GetState)
	unsubscribe := r.store.Subscribe(r.listener.Listener())
	defer unsubscribe()

	cfg.logger.Debug("scenario starting", "name", scenario.Name, "steps", len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.executeStep(i, step); err != nil {
			return nil, err
		}
	}

	if r.recorder != nil {
		if err := r.recorder.Err(); err != nil {
			return nil, fmt.Errorf("journal for %s: %w", scenario.Name, err)
		}
	}

	r.result.State = r.store.GetState()
	r.result.Commits = r.store.Seq()
	r.result.Notifications = r.listener.Count()

	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(a, r.result); err != nil {
			r.result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}

	cfg.logger.Debug("scenario finished",
		"name", scenario.Name,
		"pass", r.result.Pass,
		"commits", r.result.Commits,
	)
	return r.result, nil
}

func (r *runner) executeStep(i int, step Step) error {
	var (
		event TraceEvent
		err   error
	)

	if len(step.Batch) > 0 {
		actions := make([]ir.PlainAction, len(step.Batch))
		event.Type = "batch"
		for j, b := range step.Batch {
			a, perr := buildAction(b.Dispatch, b.Payload)
			if perr != nil {
				return fmt.Errorf("step %d: batch action %d: %w", i, j, perr)
			}
			actions[j] = a
			event.Actions = append(event.Actions, b.Dispatch)
		}
		_, err = r.store.Dispatch(batchThunk(actions))
	} else {
		a, perr := buildAction(step.Dispatch, step.Payload)
		if perr != nil {
			return fmt.Errorf("step %d: %w", i, perr)
		}
		event.Type = a.Type
		if len(a.Payload) > 0 {
			event.Payload = a.Payload
		}
		_, err = r.store.Dispatch(a)
	}

	event.Seq = r.store.Seq()
	if err != nil {
		event.Error = errorKind(err)
	}
	r.result.addEvent(event)

	switch {
	case err == nil && step.ExpectError != "":
		r.result.AddError(fmt.Sprintf("step %d (%s): expected %s error, dispatch succeeded", i, event.Type, step.ExpectError))
	case err != nil && step.ExpectError == "":
		r.result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, event.Type, err))
	case err != nil && step.ExpectError != ErrorKindAny && step.ExpectError != event.Error:
		r.result.AddError(fmt.Sprintf("step %d (%s): expected %s error, got %s: %v", i, event.Type, step.ExpectError, event.Error, err))
	}
	return nil
}

// batchThunk dispatches actions in order, stopping at the first failure.
func batchThunk(actions []ir.PlainAction) middleware.ThunkFunc[reducer.State] {
	return func(dispatch store.DispatchFunc, _ func() reducer.State) (any, error) {
		for _, a := range actions {
			if _, err := dispatch(a); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

func buildAction(typ string, payload map[string]any) (ir.PlainAction, error) {
	a := ir.PlainAction{Type: typ}
	if len(payload) == 0 {
		return a, nil
	}
	v, err := ir.FromGo(payload)
	if err != nil {
		return ir.PlainAction{}, fmt.Errorf("payload for %s: %w", typ, err)
	}
	a.Payload = v.(ir.IRObject)
	return a, nil
}

// errorKind classifies a dispatch error for expect_error matching.
// PanicError is checked first because it may wrap any other error.
func errorKind(err error) string {
	switch {
	case middleware.IsPanicError(err):
		return ErrorKindPanic
	case compiler.IsReduceError(err):
		return ErrorKindReduce
	case store.IsInvalidActionError(err):
		return ErrorKindInvalid
	case store.IsReentrantDispatchError(err):
		return ErrorKindReentrant
	default:
		return errorKindOther
	}
}
