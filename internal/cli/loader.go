package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/roach88/statecore/internal/compiler"
	"github.com/roach88/statecore/internal/middleware"
	"github.com/roach88/statecore/internal/reducer"
	"github.com/roach88/statecore/internal/store"
)

// Error codes for CLI output.
const (
	// General errors (E001-E099)
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoSlices    = "E003" // No slices declared
	ErrCodeLoadFailed  = "E004" // CUE load or compile failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeBadInput    = "E008" // Malformed action or payload input
	ErrCodeJournal     = "E009" // Journal open/read failure
	ErrCodeDispatch    = "E010" // Dispatch rejected

	// Slice validation errors (E100-E199) come from compiler.Validate.
)

// LoadError is a spec loading failure classified by error code.
type LoadError struct {
	Code string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// classify maps a compiler error to an error code.
func classify(err error) string {
	var verr compiler.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Code
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case errors.Is(err, compiler.ErrNoSlices):
		return ErrCodeNoSlices
	case compiler.IsCompileError(err):
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}

// loadBundle compiles every slice spec in dir, failing fast.
func loadBundle(dir string) (*compiler.Bundle, error) {
	bundle, errs := compiler.LoadDir(dir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, &LoadError{Code: classify(errs[0]), Err: errs[0]}
	}
	return bundle, nil
}

// buildStore creates a store over the bundle's combined reducer with the
// standard middleware stack. Extra options are applied after it.
func buildStore(bundle *compiler.Bundle, logger *slog.Logger, opts ...store.Option[reducer.State]) (*store.Store[reducer.State], error) {
	root, err := bundle.Reducer()
	if err != nil {
		return nil, err
	}
	all := []store.Option[reducer.State]{
		store.WithLogger[reducer.State](logger),
		store.WithEnhancer(middleware.Apply(
			middleware.Recoverer[reducer.State](),
			middleware.Logger[reducer.State](logger),
		)),
	}
	return store.New(root, append(all, opts...)...)
}

// loadErrorExit reports a load failure and converts it to an ExitError.
func loadErrorExit(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var lerr *LoadError
	if errors.As(err, &lerr) {
		code = lerr.Code
		err = lerr.Err
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load specs", err)
}
