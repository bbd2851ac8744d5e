// Package selector reads derived values out of store state.
//
// Path selects a value from a tree of maps, arrays and IR values by a
// dotted path such as "todos.items.0.text". Memo caches a derived value
// and recomputes it only when the input state changes identity, which is
// how mapStateToProps functions stay cheap across notifications that did
// not touch the state they read.
package selector
