package store

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/statecore/internal/ir"
)

// ErrDispatchDuringSetup is returned when middleware dispatches while the
// chain is still being constructed.
var ErrDispatchDuringSetup = errors.New("dispatching while constructing middleware is not allowed")

// InvalidActionError is returned by the terminal dispatch when the value
// that reached it is not an ir.Action with a non-empty type.
//
// State is unchanged and no listener is notified.
type InvalidActionError struct {
	Value any
}

// Error implements the error interface.
func (e *InvalidActionError) Error() string {
	if e.Value == nil {
		return "invalid action: <nil>"
	}
	if reflect.TypeOf(e.Value).Kind() == reflect.Func {
		return fmt.Sprintf("invalid action: %T is a deferred action; install the thunk middleware to dispatch it", e.Value)
	}
	return fmt.Sprintf("invalid action: %T has no type discriminant", e.Value)
}

// ReentrantDispatchError is returned when Dispatch is called while a
// reducer is running.
type ReentrantDispatchError struct {
	Type string // type of the rejected action, if any
}

// Error implements the error interface.
func (e *ReentrantDispatchError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("reducers may not dispatch actions (rejected %s)", e.Type)
	}
	return "reducers may not dispatch actions"
}

// DeferredDispatchError reports the failure of a dispatch that a listener
// issued during a sweep and that was drained after it.
//
// It is returned by the dispatch whose sweep queued the failed action. That
// dispatch's own commit stands.
type DeferredDispatchError struct {
	Type string
	Err  error
}

// Error implements the error interface.
func (e *DeferredDispatchError) Error() string {
	return fmt.Sprintf("deferred dispatch %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying dispatch error.
func (e *DeferredDispatchError) Unwrap() error {
	return e.Err
}

// QuotaExceededError is returned when listener-issued dispatches exceed
// the drain limit (see WithMaxDeferred). Remaining queued actions are dropped.
type QuotaExceededError struct {
	Limit   int // maximum deferred dispatches per drain
	Dropped int // queued actions discarded
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("deferred dispatch quota exceeded: limit %d, dropped %d queued action(s)",
		e.Limit, e.Dropped)
}

// IsInvalidActionError returns true if err is an InvalidActionError.
// Uses errors.As to handle wrapped errors.
func IsInvalidActionError(err error) bool {
	var ie *InvalidActionError
	return errors.As(err, &ie)
}

// IsReentrantDispatchError returns true if err is a ReentrantDispatchError.
func IsReentrantDispatchError(err error) bool {
	var re *ReentrantDispatchError
	return errors.As(err, &re)
}

// IsDeferredDispatchError returns true if err is a DeferredDispatchError.
func IsDeferredDispatchError(err error) bool {
	var de *DeferredDispatchError
	return errors.As(err, &de)
}

// IsQuotaExceededError returns true if err is a QuotaExceededError.
func IsQuotaExceededError(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}

// describe returns the action type of v for diagnostics.
func describe(v any) string {
	if t, ok := ir.TypeOf(v); ok {
		return t
	}
	return fmt.Sprintf("%T", v)
}
