// Package ir provides the action contract and value types shared by every
// statecore package.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - An action is anything implementing Action; the discriminant is the
//     string returned by ActionType and is compared by exact equality
//   - PlainAction is the open-shaped action used by declarative reducers,
//     scenarios and the journal; typed actions are registered in a Registry
//   - NO float types in IR values - use int64 for numbers
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
