package reducer

import (
	"reflect"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Lift adapts a reducer over T to the untyped slice form used by Combine.
//
// A nil substate is presented to r as the zero value of T, which is how a
// slice receives its initial state. A substate of another type fails with
// SliceTypeError.
func Lift[T any](r store.Reducer[T]) store.Reducer[any] {
	return func(state any, action ir.Action) (any, error) {
		var typed T
		if state != nil {
			v, ok := state.(T)
			if !ok {
				return state, &SliceTypeError{
					Want: reflect.TypeFor[T](),
					Got:  reflect.TypeOf(state),
				}
			}
			typed = v
		}

		next, err := r(typed, action)
		if err != nil {
			return state, err
		}
		return next, nil
	}
}
