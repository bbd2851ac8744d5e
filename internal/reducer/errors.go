package reducer

import (
	"errors"
	"fmt"
	"reflect"
)

// SliceTypeError is returned by a lifted reducer when its substate has a
// dynamic type other than the one it was lifted for.
type SliceTypeError struct {
	Want reflect.Type
	Got  reflect.Type
}

// Error implements the error interface.
func (e *SliceTypeError) Error() string {
	return fmt.Sprintf("slice state has type %v, want %v", e.Got, e.Want)
}

// UndefinedSliceError is returned when a slice reducer produces a nil
// state. Slices must return their initial state for actions they do not
// recognize, including ir.InitAction.
type UndefinedSliceError struct {
	Slice string
	Type  string
}

// Error implements the error interface.
func (e *UndefinedSliceError) Error() string {
	return fmt.Sprintf("slice %q returned a nil state for action %s", e.Slice, e.Type)
}

// IsSliceTypeError returns true if err is a SliceTypeError.
func IsSliceTypeError(err error) bool {
	var se *SliceTypeError
	return errors.As(err, &se)
}

// IsUndefinedSliceError returns true if err is an UndefinedSliceError.
func IsUndefinedSliceError(err error) bool {
	var ue *UndefinedSliceError
	return errors.As(err, &ue)
}
