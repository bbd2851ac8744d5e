package store

import "github.com/roach88/statecore/internal/ir"

// Reducer computes the next state from the current state and an action.
//
// Reducers must be pure and total: they depend only on their arguments,
// return the input state unchanged (same reference) for action types they
// do not handle, and never dispatch. A returned error aborts the dispatch.
type Reducer[S any] func(state S, action ir.Action) (S, error)

// DispatchFunc submits a value for processing.
// The value is normally an ir.Action; middleware may accept other shapes
// (e.g. deferred actions) and must not forward them to the terminal dispatch.
type DispatchFunc func(action any) (any, error)

// Listener is notified after every committed dispatch.
type Listener func()

// API is the minimal store facade handed to middleware.
// Dispatch always refers to the fully composed dispatch, so middleware may
// re-enter the top of the chain.
type API[S any] interface {
	GetState() S
	Dispatch(action any) (any, error)
}

// Wrapper turns the next dispatch in the chain into the concrete dispatch.
type Wrapper func(next DispatchFunc) DispatchFunc

// Middleware intercepts actions between the dispatch caller and the reducer.
//
// It is applied in three stages: Wrap receives the store facade once when
// the chain is built and returns a Wrapper; the Wrapper receives the next
// dispatch and returns the per-action dispatch.
type Middleware[S any] interface {
	Wrap(api API[S]) Wrapper
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc[S any] func(api API[S]) Wrapper

// Wrap implements Middleware.
func (f MiddlewareFunc[S]) Wrap(api API[S]) Wrapper {
	return f(api)
}

// Enhancer builds the store's installed dispatch from its base dispatch.
// It is called exactly once, during New, before any action is processed.
type Enhancer[S any] func(api API[S], base DispatchFunc) DispatchFunc

// Commit describes one committed dispatch.
type Commit[S any] struct {
	Seq    int64
	Action ir.Action
	State  S
}

// CommitObserver is called after each commit, before the listener sweep.
// Observers must not dispatch.
type CommitObserver[S any] interface {
	OnCommit(c Commit[S])
}

// CommitObserverFunc adapts a function to the CommitObserver interface.
type CommitObserverFunc[S any] func(c Commit[S])

// OnCommit implements CommitObserver.
func (f CommitObserverFunc[S]) OnCommit(c Commit[S]) {
	f(c)
}
