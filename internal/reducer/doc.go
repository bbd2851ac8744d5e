// Package reducer composes per-slice reducers into a root reducer.
//
// Combine partitions a map-shaped state by key and hands each declared
// slice its own substate and the unchanged action. Lift adapts a reducer
// over a concrete slice type to the untyped form Combine accepts.
//
// The combined state is replaced wholesale on every call: Combine always
// builds a fresh top-level map, while slices whose reducer ignored the
// action keep their previous value (same reference).
package reducer
