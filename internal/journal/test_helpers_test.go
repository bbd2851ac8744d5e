package journal

import (
	"path/filepath"
	"testing"

	"github.com/roach88/statecore/internal/ir"
)

// createTestJournal creates a journal in a temp directory for testing.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// createTestEntry creates an entry with a payload and a fixed state hash.
func createTestEntry(runID string, seq int64, typ string, pairs ...ir.IRPair) Entry {
	return Entry{
		RunID:     runID,
		Seq:       seq,
		Type:      typ,
		Payload:   ir.NewIRObjectFromPairs(pairs...),
		StateHash: "hash-" + typ,
	}
}

// counter is a deterministic reducer for recorder and replay tests.
func counter(state int, action ir.Action) (int, error) {
	switch action.ActionType() {
	case "INC":
		return state + 1, nil
	case "ADD":
		n, _ := action.(ir.PlainAction).Field("n")
		return state + int(n.(ir.IRInt)), nil
	default:
		return state, nil
	}
}
