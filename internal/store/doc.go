// Package store implements the statecore state container.
//
// A Store owns the current state reference, the ordered listener set and
// the fully composed dispatch function. State changes only through
// Dispatch: the action runs through the installed middleware chain, reaches
// the root reducer, and the returned state replaces the old reference.
// Listeners are then notified in subscription order.
//
// ARCHITECTURE:
//
// Single Logical Thread:
// Dispatch, reducer invocation and listener notification run synchronously
// on the caller's stack. The Store takes no locks; state replacement is a
// single reference swap. A Store must only be used from one goroutine.
// Producers on other goroutines hand actions to a Loop, which applies them
// one at a time on the goroutine that runs it.
//
// Dispatch Flow:
//  1. Dispatch(action) enters the composed chain (outermost middleware first)
//  2. The terminal dispatch validates the action (ir.TypeOf)
//  3. The reducer computes the candidate state; an error aborts with no commit
//  4. Commit: state replaced, commit seq incremented, commit observers called
//  5. Listener sweep over a snapshot of the listener list
//  6. Dispatches issued by listeners during the sweep are queued and drained
//     after it, each through the full chain
//
// INVARIANTS:
//   - A dispatch either fully commits or leaves state and listeners untouched
//   - Dispatch from inside a reducer fails with ReentrantDispatchError
//   - Dispatch from inside a listener never runs inline
//   - Subscribe/unsubscribe during a sweep only affect later sweeps
//   - Unsubscribe is idempotent
package store
