package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// PanicError is returned by Recoverer when a panic escapes the rest of the
// chain.
//
// A panic raised by a reducer or an inner middleware means nothing was
// committed. A panic raised by a listener happens after the commit: the new
// state stands, and actions other listeners queued during that sweep are
// discarded.
type PanicError struct {
	Type  string // action type, or the Go type for non-actions
	Value any    // recovered value
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while dispatching %s: %v", e.Type, e.Value)
}

// Unwrap returns the recovered value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanicError returns true if err is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// Recoverer returns middleware converting panics further down the chain
// into *PanicError. Install it first so it wraps everything else.
func Recoverer[S any]() store.Middleware[S] {
	return store.MiddlewareFunc[S](func(api store.API[S]) store.Wrapper {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action any) (result any, err error) {
				defer func() {
					if r := recover(); r != nil {
						result = nil
						err = &PanicError{
							Type:  actionType(action),
							Value: r,
							Stack: debug.Stack(),
						}
					}
				}()
				return next(action)
			}
		}
	})
}

func actionType(action any) string {
	if typ, ok := ir.TypeOf(action); ok {
		return typ
	}
	return fmt.Sprintf("%T", action)
}
