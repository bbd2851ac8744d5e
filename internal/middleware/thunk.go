package middleware

import "github.com/roach88/statecore/internal/store"

// ThunkFunc is a deferred action. Dispatching one with Thunk installed
// invokes it with the composed dispatch and the state reader; its return
// values become the dispatch result.
type ThunkFunc[S any] func(dispatch store.DispatchFunc, getState func() S) (any, error)

// Thunk returns middleware that runs deferred actions.
//
// Both ThunkFunc[S] and plain functions of the same signature are
// recognized. Every other value is forwarded unchanged.
func Thunk[S any]() store.Middleware[S] {
	return store.MiddlewareFunc[S](func(api store.API[S]) store.Wrapper {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action any) (any, error) {
				switch fn := action.(type) {
				case ThunkFunc[S]:
					return fn(api.Dispatch, api.GetState)
				case func(store.DispatchFunc, func() S) (any, error):
					return fn(api.Dispatch, api.GetState)
				}
				return next(action)
			}
		}
	})
}
