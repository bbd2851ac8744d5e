package middleware

import "github.com/roach88/statecore/internal/store"

// Apply returns an enhancer installing mws around the store's dispatch.
//
// The chain is built once, when the store is constructed. Each middleware's
// Wrap is called in order with the store facade; dispatching from within
// Wrap fails with store.ErrDispatchDuringSetup.
func Apply[S any](mws ...store.Middleware[S]) store.Enhancer[S] {
	return func(api store.API[S], base store.DispatchFunc) store.DispatchFunc {
		wrappers := make([]store.Wrapper, 0, len(mws))
		for _, mw := range mws {
			if mw == nil {
				continue
			}
			wrappers = append(wrappers, mw.Wrap(api))
		}
		return Compose(wrappers...)(base)
	}
}

// Compose composes wrappers right to left: Compose(a, b, c)(next) is
// a(b(c(next))). With no wrappers it returns next unchanged.
func Compose(wrappers ...store.Wrapper) store.Wrapper {
	return func(next store.DispatchFunc) store.DispatchFunc {
		for i := len(wrappers) - 1; i >= 0; i-- {
			next = wrappers[i](next)
		}
		return next
	}
}
