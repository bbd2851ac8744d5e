// Package journal provides a SQLite-backed action journal.
//
// A journal records every committed dispatch of a store as an entry in a
// run. Entries carry the action type, its payload as canonical JSON and
// the content hash of the state the dispatch committed. The journal is an
// audit and debugging log: it can be printed (trace) and re-dispatched into
// a fresh store to check that the reducers are deterministic (Verify). It
// is never used to restore a running store.
//
// # Patterns
//
// Logical time:
//   - Entries are ordered by the store's commit seq, never by wall time
//   - All queries include ORDER BY seq ASC (runs: id ASC COLLATE BINARY)
//
// Idempotent writes:
//   - UNIQUE(run_id, seq) with ON CONFLICT DO NOTHING
//   - Writing the same entry twice is a no-op
//
// Run identity:
//   - Run ids are UUIDv7, so lexical order is creation order
//   - Each run records the hash of the reducer specs it ran under
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
