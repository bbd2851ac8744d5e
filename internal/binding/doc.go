// Package binding connects view components to a store.
//
// A Connector is built once per consumer definition from a
// mapStateToProps function. Each consumer instance gets its own Adapter by
// wrapping a View. The adapter subscribes while mounted, recomputes props
// on every notification and asks the view to re-render through
// ScheduleUpdate. The view decides when rendering actually happens.
//
// The store handle is always passed explicitly: either directly to
// Adapter.Attach, or through a Provider that owns the handle for a group of
// adapters and can re-bind all of them to a different store.
//
// Lifecycle of an Adapter:
//
//	Unmounted --Attach(src)--> Mounted --Detach()--> Unmounted
//	Mounted   --Attach(other)--> Mounted (detached from the old source first)
//
// Nothing in this package is safe for concurrent use; adapters live on the
// goroutine that owns the store.
package binding
