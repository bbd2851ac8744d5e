package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/store"
)

func recordRun(t *testing.T, j *Journal, actions ...ir.Action) string {
	t.Helper()
	rec, err := NewRecorder[int](context.Background(), j, WithIDGenerator(NewFixedGenerator("run-1")))
	require.NoError(t, err)

	s := store.MustNew(counter, store.WithCommitObserver[int](rec))
	for _, a := range actions {
		_, err := s.Dispatch(a)
		require.NoError(t, err)
	}
	require.NoError(t, rec.Err())
	return rec.Run().ID
}

func TestVerify_DeterministicReplay(t *testing.T) {
	j := createTestJournal(t)
	runID := recordRun(t, j,
		ir.NewAction("INC"),
		ir.NewAction("ADD", ir.O("n", ir.IRInt(3))),
		ir.NewAction("INC"),
	)

	report, err := Verify(context.Background(), j, runID, store.MustNew(counter))
	require.NoError(t, err)

	assert.True(t, report.OK(), "mismatches: %+v", report.Mismatches)
	assert.Equal(t, 3, report.Entries)
	assert.Equal(t, runID, report.RunID)
}

func TestVerify_DetectsDivergence(t *testing.T) {
	j := createTestJournal(t)
	runID := recordRun(t, j,
		ir.NewAction("INC"),
		ir.NewAction("ADD", ir.O("n", ir.IRInt(3))),
	)

	// A reducer that changed its meaning of ADD since recording.
	changed := func(state int, a ir.Action) (int, error) {
		if a.ActionType() == "ADD" {
			return state * 10, nil
		}
		return counter(state, a)
	}

	report, err := Verify(context.Background(), j, runID, store.MustNew(changed))
	require.NoError(t, err)

	require.False(t, report.OK())
	require.Len(t, report.Mismatches, 1)
	m := report.Mismatches[0]
	assert.Equal(t, int64(2), m.Seq)
	assert.Equal(t, "ADD", m.Type)
	assert.Equal(t, ir.MustStateHash(4), m.Want)
	assert.Equal(t, ir.MustStateHash(10), m.Got)
}

func TestVerify_DispatchError(t *testing.T) {
	j := createTestJournal(t)
	runID := recordRun(t, j, ir.NewAction("INC"))

	failing := func(state int, a ir.Action) (int, error) {
		if a.ActionType() == "INC" {
			return state, assert.AnError
		}
		return state, nil
	}

	report, err := Verify(context.Background(), j, runID, store.MustNew(failing))
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, assert.AnError.Error(), report.Mismatches[0].Err)
}

func TestVerify_UnknownRun(t *testing.T) {
	j := createTestJournal(t)
	_, err := Verify(context.Background(), j, "missing", store.MustNew(counter))
	assert.Error(t, err)
}
