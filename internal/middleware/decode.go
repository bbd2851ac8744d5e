package middleware

import (
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

// Decode returns middleware converting ir.PlainAction values into the
// typed actions registered in reg. Plain actions of unregistered types
// fail with ir.UnknownActionError and never reach the reducer. Actions
// that are already typed, untyped values and reserved store actions pass
// through.
func Decode[S any](reg *ir.Registry) store.Middleware[S] {
	return store.MiddlewareFunc[S](func(api store.API[S]) store.Wrapper {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action any) (any, error) {
				plain, ok := action.(ir.PlainAction)
				if !ok || plain.Type == "" {
					return next(action)
				}
				typed, err := reg.Decode(plain)
				if err != nil {
					return nil, err
				}
				return next(typed)
			}
		}
	})
}
