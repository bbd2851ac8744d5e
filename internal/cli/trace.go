package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // defaults to the latest run
	List     bool   // list runs instead of entries
}

// TraceResult holds one run and its entries.
type TraceResult struct {
	Run     journal.Run     `json:"run"`
	Entries []journal.Entry `json:"entries"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print journaled dispatches",
		Long: `Print the entries of a journal run in commit order.

Without --run the most recent run is shown. --list prints the runs
instead.

Examples:
  statecore trace --db ./journal.db
  statecore trace --db ./journal.db --run 0190a1b2-...
  statecore trace --db ./journal.db --list --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (defaults to the latest run)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list runs")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		_ = formatter.Error(classify(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.List {
		runs, err := j.ListRuns(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(formatter.Writer, "No runs found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(formatter.Writer, "%s  label=%s  start_seq=%d  spec=%s\n", r.ID, r.Label, r.StartSeq, shortHash(r.SpecHash))
		}
		return nil
	}

	run, err := resolveRun(ctx, j, opts.RunID)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run not found", err)
	}

	entries, err := j.ReadEntries(ctx, run.ID)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read entries", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(TraceResult{Run: run, Entries: entries})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.Label)
	for _, e := range entries {
		payload := "{}"
		if len(e.Payload) > 0 {
			data, err := ir.MarshalCanonical(e.Payload)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to encode payload", err)
			}
			payload = string(data)
		}
		fmt.Fprintf(w, "%4d  %-20s %s  state=%s\n", e.Seq, e.Type, payload, shortHash(e.StateHash))
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
	return nil
}

// openExistingJournal opens a journal, failing if the file is missing
// instead of creating an empty database.
func openExistingJournal(path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal database: %w", err)
	}
	return journal.Open(path)
}

// resolveRun reads the run with the given id, or the latest run if id is
// empty.
func resolveRun(ctx context.Context, j *journal.Journal, id string) (journal.Run, error) {
	if id == "" {
		return j.LatestRun(ctx)
	}
	run, err := j.ReadRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Run{}, fmt.Errorf("run %s not found", id)
	}
	return run, err
}

func shortHash(h string) string {
	const n = 12
	if len(h) <= n {
		return h
	}
	return h[:n]
}
