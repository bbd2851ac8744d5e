package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/journal"
	"github.com/roach88/statecore/internal/reducer"
	"github.com/roach88/statecore/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Actions  string // actions YAML file
	Database string // optional journal database
	Label    string // journal run label
}

// ActionsFile is the YAML input of the run command.
type ActionsFile struct {
	Actions []ActionSpec `yaml:"actions"`
}

// ActionSpec is one action in an actions file.
type ActionSpec struct {
	Type    string         `yaml:"type"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// RunFailure is one action the store rejected.
type RunFailure struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

// RunResult is the outcome of the run command.
type RunResult struct {
	Dispatched int             `json:"dispatched"`
	Seq        int64           `json:"seq"`
	Failures   []RunFailure    `json:"failures,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	State      json.RawMessage `json:"state"` // canonical JSON
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <specs-dir>",
		Short: "Dispatch a file of actions through the store",
		Long: `Build a store from the slice specs and feed it the actions in an
actions file through the single-writer dispatch loop. A rejected action
leaves the state unchanged and the loop continues.

With --db every committed dispatch is journaled to SQLite.

Actions file format:
  actions:
    - type: INC
    - type: ADD
      payload: { amount: 5 }

Exit codes:
  0 - All actions committed
  1 - One or more actions were rejected
  2 - Command error

Examples:
  statecore run ./specs --actions actions.yaml
  statecore run ./specs --actions actions.yaml --db ./journal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Actions, "actions", "", "path to actions YAML file (required)")
	_ = cmd.MarkFlagRequired("actions")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal dispatches to this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "journal run label (defaults to the actions file name)")

	return cmd
}

func runRun(opts *RunOptions, specsDir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	actions, err := LoadActions(opts.Actions)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid actions file", err)
	}

	bundle, err := loadBundle(specsDir)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	var (
		storeOpts []store.Option[reducer.State]
		recorder  *journal.Recorder[reducer.State]
	)
	if opts.Database != "" {
		j, err := journal.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()

		hash, err := bundle.Hash()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to hash specs", err)
		}
		label := opts.Label
		if label == "" {
			label = filepath.Base(opts.Actions)
		}
		recorder, err = journal.NewRecorder[reducer.State](ctx, j,
			journal.WithSpecHash(hash),
			journal.WithLabel(label),
			journal.WithRecorderLogger(logger),
		)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to start journal run", err)
		}
		storeOpts = append(storeOpts, store.WithCommitObserver[reducer.State](recorder))
		formatter.VerboseLog("Journaling to %s as run %s", opts.Database, recorder.Run().ID)
	}

	st, err := buildStore(bundle, logger, storeOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build store", err)
	}

	result := RunResult{}
	loop := store.NewLoop(st, store.WithLoopLogger(logger))

	// Done callbacks run inside loop.Run on this goroutine.
	go func() {
		defer loop.Stop()
		for i, a := range actions {
			ok := loop.EnqueueRequest(store.Request{
				Action: a,
				Done: func(_ any, err error) {
					result.Dispatched++
					if err != nil {
						result.Failures = append(result.Failures, RunFailure{
							Index: i,
							Type:  a.Type,
							Error: err.Error(),
						})
					}
				},
			})
			if !ok {
				return
			}
		}
	}()

	if err := loop.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "dispatch loop interrupted", err)
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "journal write failed", err)
		}
		result.RunID = recorder.Run().ID
	}

	result.Seq = st.Seq()
	result.State, err = ir.MarshalCanonical(st.GetState())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode state", err)
	}

	return outputRunResult(formatter, result)
}

func outputRunResult(formatter *OutputFormatter, result RunResult) error {
	failed := len(result.Failures) > 0

	if formatter.IsJSON() {
		if failed {
			first := result.Failures[0]
			if err := formatter.Failure(ErrCodeDispatch, first.Error, result); err != nil {
				return err
			}
		} else if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Dispatched %d action(s), %d committed\n", result.Dispatched, result.Seq)
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  ✗ [%d] %s: %s\n", f.Index, f.Type, f.Error)
		}
		if result.RunID != "" {
			fmt.Fprintf(w, "Run: %s\n", result.RunID)
		}
		fmt.Fprintf(w, "State: %s\n", result.State)
	}

	if failed {
		return NewExitError(ExitFailure, fmt.Sprintf("%d action(s) rejected", len(result.Failures)))
	}
	return nil
}

// LoadActions reads an actions file and converts each entry to a plain
// action. Unknown fields are rejected.
func LoadActions(path string) ([]ir.PlainAction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions file: %w", err)
	}

	var file ActionsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Actions) == 0 {
		return nil, errors.New("no actions in file")
	}

	out := make([]ir.PlainAction, len(file.Actions))
	for i, spec := range file.Actions {
		if spec.Type == "" {
			return nil, fmt.Errorf("action %d: type is required", i)
		}
		a := ir.PlainAction{Type: spec.Type}
		if len(spec.Payload) > 0 {
			v, err := ir.FromGo(spec.Payload)
			if err != nil {
				return nil, fmt.Errorf("action %d (%s): %w", i, spec.Type, err)
			}
			a.Payload = v.(ir.IRObject)
		}
		out[i] = a
	}
	return out, nil
}
