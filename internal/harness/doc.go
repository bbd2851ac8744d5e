// Package harness runs YAML scenarios against stores built from
// declarative slice specs.
//
// A scenario compiles every CUE file in its specs directory, builds a
// store with the standard middleware stack, dispatches its steps in order
// and evaluates its assertions against the final state.
//
// # Scenario Format
//
//	name: counter_basics
//	description: "What this scenario validates"
//	specs: ../specs            # relative to the scenario file
//	steps:
//	  - dispatch: INC
//	  - dispatch: ADD
//	    payload: { amount: 5 }
//	  - dispatch: BOOM
//	    expect_error: reduce
//	  - batch:                 # dispatched as one thunk
//	      - dispatch: INC
//	      - dispatch: INC
//	assertions:
//	  - type: state_equals
//	    path: counter
//	    value: 8
//	  - type: commit_count
//	    count: 5
//	  - type: notify_count
//	    count: 5
//
// # Error Kinds
//
// expect_error names the kind of failure a step must produce:
//
//   - reduce: a slice handler rejected the action
//   - invalid: the action has no type
//   - reentrant: a reducer dispatched
//   - panic: a reducer or middleware panicked
//   - any: any error
//
// # Golden Traces
//
// RunWithGolden compares the canonical JSON trace of a scenario against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
