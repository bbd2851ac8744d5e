package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statecore/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Slices []string                   `json:"slices,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate slice specs",
		Long: `Compile and validate every slice spec in a directory.

All slices are checked; every error is reported, not just the first.

Exit codes:
  0 - All slices valid
  1 - One or more slices invalid
  2 - Command error (directory not found, CUE syntax error, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	bundle, errs := compiler.LoadDir(specsDir, compiler.LoadModeCollectAll)
	if bundle == nil {
		return loadErrorExit(formatter, &LoadError{Code: classify(errs[0]), Err: errs[0]})
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", len(bundle.Files), specsDir)

	result := ValidationResult{Valid: len(errs) == 0}
	for _, s := range bundle.Slices {
		result.Slices = append(result.Slices, s.Name)
		formatter.VerboseLog("Slice %s: %d handler(s)", s.Name, len(s.Handlers))
	}
	for _, err := range errs {
		result.Errors = append(result.Errors, toValidationError(err))
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// toValidationError converts any compiler error to a ValidationError.
func toValidationError(err error) compiler.ValidationError {
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		line := 0
		if cerr.Pos.IsValid() {
			line = cerr.Pos.Line()
		}
		return compiler.ValidationError{
			Field:   cerr.Field,
			Message: cerr.Message,
			Code:    ErrCodeLoadFailed,
			Line:    line,
		}
	}
	return compiler.ValidationError{
		Field:   "specs",
		Message: err.Error(),
		Code:    ErrCodeGeneric,
	}
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d slice(s))\n", len(result.Slices))
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.IsJSON() {
		first := result.Errors[0]
		if err := formatter.Failure(first.Code, first.Message, result); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range result.Errors {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return failure
}
