package reducer

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// State is the shape of a combined state: slice name to substate.
type State = map[string]any

// Combine builds a root reducer from named slice reducers.
//
// For every action, each declared slice is invoked in sorted name order
// with its current substate (nil if absent) and the unchanged action. The
// results are assembled into a new map; keys of the incoming state that
// name no slice are dropped. The first slice error aborts the call and is
// returned unmodified.
func Combine(reducers map[string]store.Reducer[any]) (store.Reducer[State], error) {
	if len(reducers) == 0 {
		return nil, errors.New("reducer: no slices to combine")
	}
	for name, r := range reducers {
		if name == "" {
			return nil, errors.New("reducer: empty slice name")
		}
		if r == nil {
			return nil, fmt.Errorf("reducer: slice %q has a nil reducer", name)
		}
	}

	// The caller's map may change after Combine returns.
	owned := maps.Clone(reducers)
	names := slices.Sorted(maps.Keys(owned))

	return func(state State, action ir.Action) (State, error) {
		next := make(State, len(names))
		for _, name := range names {
			sub, err := owned[name](state[name], action)
			if err != nil {
				return state, err
			}
			if sub == nil {
				return state, &UndefinedSliceError{Slice: name, Type: action.ActionType()}
			}
			next[name] = sub
		}
		return next, nil
	}, nil
}

// MustCombine is like Combine but panics on error.
func MustCombine(reducers map[string]store.Reducer[any]) store.Reducer[State] {
	r, err := Combine(reducers)
	if err != nil {
		panic(err)
	}
	return r
}
