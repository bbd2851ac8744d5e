package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the compiled form of a specs directory.
type CompilationResult struct {
	SpecHash string          `json:"spec_hash"`
	Slices   json.RawMessage `json:"slices"` // canonical JSON
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile slice specs to canonical IR",
		Long: `Compile CUE slice specs to their canonical IR form.

The output is canonical JSON keyed by slice name, together with the spec
hash recorded in journal runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	bundle, err := loadBundle(specsDir)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	formatter.VerboseLog("Compiled %d slice(s) from %d file(s)", len(bundle.Slices), len(bundle.Files))

	slicesJSON, err := ir.MarshalCanonical(bundle.IR())
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to encode IR", err)
	}
	hash, err := bundle.Hash()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to hash specs", err)
	}

	result := CompilationResult{SpecHash: hash, Slices: slicesJSON}

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode output", err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(map[string]any{"output": opts.Output, "spec_hash": hash})
		}
		fmt.Fprintf(formatter.Writer, "✓ Compiled %d slice(s) to %s\n", len(bundle.Slices), opts.Output)
		return nil
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "spec_hash: %s\n%s\n", hash, slicesJSON)
	return nil
}
