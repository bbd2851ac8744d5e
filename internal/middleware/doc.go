// Package middleware builds interception pipelines around a store's
// dispatch.
//
// Apply turns a list of store.Middleware into a store.Enhancer. The first
// middleware is outermost: an action dispatched through a chain of A, B
// and C flows A → B → C → reducer, and results return C → B → A.
//
// Middleware receives a store.API whose Dispatch is the fully composed
// dispatch, so a middleware (or a thunk it runs) that dispatches re-enters
// the top of the chain.
//
// Provided middleware:
//
//	Thunk      runs deferred actions (ThunkFunc) instead of forwarding them
//	Decode     converts plain actions into registered typed actions
//	Logger     logs each action and its outcome with slog
//	Recoverer  converts panics further down the chain into PanicError
package middleware
