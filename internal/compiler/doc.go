// Package compiler turns declarative CUE slice specs into reducers.
//
// A spec directory holds one or more .cue files declaring slices:
//
//	slice: todos: {
//		initial: []
//		on: ADD_TODO: {op: "append", field: "text"}
//		on: CLEAR: {op: "set", value: []}
//	}
//
// Every slice has an initial value and a set of handlers keyed by action
// type. A handler applies one operation:
//
//	set     replace the state with value, or with payload[field]
//	add     add by (default 1), or payload[field], to an int state
//	append  append payload[field], or the whole payload, to an array state
//	remove  remove array elements equal to payload[field]
//	merge   merge the payload object (or payload[field]) into an object state
//	fail    reject the action with message
//
// Compiled slices are pure and total: action types without a handler
// return the input state unchanged. Float values are rejected at compile
// time, matching the IR value model.
package compiler
