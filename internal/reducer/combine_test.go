package reducer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

type todoList struct {
	Items []string
}

type filter struct {
	Mode string
}

func todos(state *todoList, a ir.Action) (*todoList, error) {
	if state == nil {
		state = &todoList{}
	}
	if a.ActionType() != "ADD_TODO" {
		return state, nil
	}
	text, _ := a.(ir.PlainAction).Field("text")
	next := &todoList{Items: append(append([]string{}, state.Items...), string(text.(ir.IRString)))}
	return next, nil
}

func visibility(state *filter, a ir.Action) (*filter, error) {
	if state == nil {
		state = &filter{Mode: "all"}
	}
	if a.ActionType() != "SET_FILTER" {
		return state, nil
	}
	mode, _ := a.(ir.PlainAction).Field("mode")
	return &filter{Mode: string(mode.(ir.IRString))}, nil
}

func appReducer(t *testing.T) store.Reducer[State] {
	t.Helper()
	r, err := Combine(map[string]store.Reducer[any]{
		"todos":      Lift(todos),
		"visibility": Lift(visibility),
	})
	require.NoError(t, err)
	return r
}

func TestCombine_InitialState(t *testing.T) {
	s := store.MustNew(appReducer(t))

	state := s.GetState()
	require.Len(t, state, 2)
	assert.Equal(t, &todoList{}, state["todos"])
	assert.Equal(t, &filter{Mode: "all"}, state["visibility"])
}

func TestCombine_UnmatchedSlicesKeepIdentity(t *testing.T) {
	s := store.MustNew(appReducer(t))
	before := s.GetState()

	_, err := s.Dispatch(ir.NewAction("ADD_TODO", ir.O("text", ir.IRString("write tests"))))
	require.NoError(t, err)
	after := s.GetState()

	assert.Same(t, before["visibility"], after["visibility"], "untouched slice keeps its reference")
	assert.NotSame(t, before["todos"], after["todos"])
	assert.Equal(t, []string{"write tests"}, after["todos"].(*todoList).Items)
}

func TestCombine_FreshTopLevelMap(t *testing.T) {
	r := appReducer(t)

	prev, err := r(nil, ir.InitAction)
	require.NoError(t, err)

	next, err := r(prev, ir.NewAction("NOOP"))
	require.NoError(t, err)

	next["extra"] = true
	assert.NotContains(t, prev, "extra", "each call builds a new top-level map")
	assert.Same(t, prev["todos"], next["todos"])
	assert.Same(t, prev["visibility"], next["visibility"])
}

func TestCombine_ActionPassedUnchangedToEverySlice(t *testing.T) {
	var seen []ir.Action
	record := func(state any, a ir.Action) (any, error) {
		seen = append(seen, a)
		if state == nil {
			return 0, nil
		}
		return state, nil
	}

	r := MustCombine(map[string]store.Reducer[any]{"a": record, "b": record, "c": record})
	action := ir.NewAction("PING", ir.O("n", ir.IRInt(1)))

	_, err := r(State{"a": 1, "b": 2, "c": 3}, action)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for _, a := range seen {
		assert.Equal(t, action, a)
	}
}

func TestCombine_SliceOrderIsSorted(t *testing.T) {
	var order []string
	named := func(name string) store.Reducer[any] {
		return func(state any, a ir.Action) (any, error) {
			order = append(order, name)
			return 0, nil
		}
	}

	r := MustCombine(map[string]store.Reducer[any]{
		"zeta":  named("zeta"),
		"alpha": named("alpha"),
		"mid":   named("mid"),
	})
	_, err := r(nil, ir.InitAction)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)
}

func TestCombine_FirstErrorAborts(t *testing.T) {
	errBoom := errors.New("boom")
	var calledAfter bool

	r := MustCombine(map[string]store.Reducer[any]{
		"a": func(state any, a ir.Action) (any, error) {
			if a.ActionType() == "BOOM" {
				return nil, errBoom
			}
			return 1, nil
		},
		"b": func(state any, a ir.Action) (any, error) {
			if a.ActionType() == "BOOM" {
				calledAfter = true
			}
			return 2, nil
		},
	})

	prev := State{"a": 1, "b": 2}
	got, err := r(prev, ir.NewAction("BOOM"))
	assert.Same(t, errBoom, err)
	assert.Equal(t, prev, got)
	assert.False(t, calledAfter, "slices after the failing one are not invoked")
}

func TestCombine_DropsUndeclaredKeys(t *testing.T) {
	r := MustCombine(map[string]store.Reducer[any]{
		"count": Lift(func(n int, a ir.Action) (int, error) { return n, nil }),
	})

	next, err := r(State{"count": 3, "stale": "x"}, ir.NewAction("NOOP"))
	require.NoError(t, err)
	assert.Equal(t, State{"count": 3}, next)
}

func TestCombine_UndefinedSlice(t *testing.T) {
	r := MustCombine(map[string]store.Reducer[any]{
		"broken": func(any, ir.Action) (any, error) { return nil, nil },
	})

	_, err := store.New(r)
	require.Error(t, err)
	assert.True(t, IsUndefinedSliceError(err))

	var ue *UndefinedSliceError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "broken", ue.Slice)
	assert.Equal(t, ir.InitActionType, ue.Type)
}

func TestCombine_ConstructionErrors(t *testing.T) {
	ok := Lift(func(n int, a ir.Action) (int, error) { return n, nil })

	tests := []struct {
		name     string
		reducers map[string]store.Reducer[any]
	}{
		{"no slices", nil},
		{"empty name", map[string]store.Reducer[any]{"": ok}},
		{"nil reducer", map[string]store.Reducer[any]{"a": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Combine(tt.reducers)
			assert.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustCombine(nil) })
}

func TestCombine_CopiesReducerMap(t *testing.T) {
	reducers := map[string]store.Reducer[any]{
		"count": Lift(func(n int, a ir.Action) (int, error) { return n, nil }),
	}
	r := MustCombine(reducers)
	reducers["late"] = Lift(func(n int, a ir.Action) (int, error) { return n, nil })

	next, err := r(nil, ir.InitAction)
	require.NoError(t, err)
	assert.Equal(t, State{"count": 0}, next)
}
