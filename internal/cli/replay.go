package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// RunReplay holds the replay result for a single run.
type RunReplay struct {
	RunID         string             `json:"run_id"`
	Label         string             `json:"label,omitempty"`
	Entries       int                `json:"entries"`
	SpecMatch     bool               `json:"spec_match"`
	Deterministic bool               `json:"deterministic"`
	Mismatches    []journal.Mismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []RunReplay `json:"runs"`
	TotalRuns        int         `json:"total_runs"`
	AllDeterministic bool        `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <specs-dir>",
		Short: "Replay journaled runs and verify determinism",
		Long: `Re-dispatch the actions of journaled runs into fresh stores built from
the slice specs and compare every resulting state hash with the recorded
one.

A run recorded against different specs is still replayed; spec_match
reports whether the spec hashes agree.

Exit codes:
  0 - Every replayed state matched
  1 - One or more states diverged
  2 - Command error (database not found, etc.)

Examples:
  statecore replay ./specs --db ./journal.db
  statecore replay ./specs --db ./journal.db --run 0190a1b2-...
  statecore replay ./specs --db ./journal.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, specsDir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	bundle, err := loadBundle(specsDir)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	specHash, err := bundle.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash specs", err)
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		_ = formatter.Error(classify(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var runs []journal.Run
	if opts.RunID != "" {
		run, err := resolveRun(ctx, j, opts.RunID)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		runs = []journal.Run{run}
	} else {
		runs, err = j.ListRuns(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]RunReplay, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	for _, run := range runs {
		st, err := buildStore(bundle, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build store", err)
		}
		report, err := journal.Verify(ctx, j, run.ID, st)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}

		rr := RunReplay{
			RunID:         run.ID,
			Label:         run.Label,
			Entries:       report.Entries,
			SpecMatch:     run.SpecHash == specHash,
			Deterministic: report.OK(),
			Mismatches:    report.Mismatches,
		}
		if !rr.SpecMatch {
			formatter.VerboseLog("Run %s was recorded against different specs", run.ID)
		}
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, rr)
	}

	return outputReplay(formatter, result)
}

func outputReplay(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.IsJSON() {
		if !result.AllDeterministic {
			if err := formatter.Failure(ErrCodeGeneric, "replay diverged from journal", result); err != nil {
				return err
			}
		} else if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if len(result.Runs) == 0 {
			fmt.Fprintln(w, "No runs found in journal.")
		}
		for _, r := range result.Runs {
			mark := "✓"
			if !r.Deterministic {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s %s: %d entries", mark, r.RunID, r.Entries)
			if !r.SpecMatch {
				fmt.Fprint(w, " (spec changed)")
			}
			fmt.Fprintln(w)
			for _, m := range r.Mismatches {
				if m.Err != "" {
					fmt.Fprintf(w, "    seq %d %s: %s\n", m.Seq, m.Type, m.Err)
					continue
				}
				fmt.Fprintf(w, "    seq %d %s: want %s, got %s\n", m.Seq, m.Type, shortHash(m.Want), shortHash(m.Got))
			}
		}
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from journal")
	}
	return nil
}
