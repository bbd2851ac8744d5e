package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/ir"
)

func TestBeginRun_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	run := Run{ID: "run-1", SpecHash: "abc", Label: "demo", StartSeq: 3}
	require.NoError(t, j.BeginRun(ctx, run))

	got, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestBeginRun_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.BeginRun(ctx, Run{ID: "run-1", Label: "first"}))
	require.NoError(t, j.BeginRun(ctx, Run{ID: "run-1", Label: "second"}))

	got, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Label)
}

func TestBeginRun_EmptyID(t *testing.T) {
	j := createTestJournal(t)
	assert.Error(t, j.BeginRun(context.Background(), Run{}))
}

func TestReadRun_NotFound(t *testing.T) {
	j := createTestJournal(t)
	_, err := j.ReadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAppendEntry_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginRun(ctx, Run{ID: "run-1"}))

	entries := []Entry{
		createTestEntry("run-1", 2, "ADD_TODO", ir.O("text", ir.IRString("eggs"))),
		createTestEntry("run-1", 1, "ADD_TODO", ir.O("text", ir.IRString("milk"))),
		createTestEntry("run-1", 3, "CLEAR"),
	}
	for _, e := range entries {
		require.NoError(t, j.AppendEntry(ctx, e))
	}

	got, err := j.ReadEntries(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].Seq, got[1].Seq, got[2].Seq})
	assert.Equal(t, ir.IRObject{"text": ir.IRString("milk")}, got[0].Payload)
	assert.Equal(t, ir.IRObject{}, got[2].Payload)
	assert.Equal(t, ir.PlainAction{Type: "ADD_TODO", Payload: ir.IRObject{"text": ir.IRString("eggs")}}, got[1].Action())

	n, err := j.CountEntries(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAppendEntry_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginRun(ctx, Run{ID: "run-1"}))

	require.NoError(t, j.AppendEntry(ctx, createTestEntry("run-1", 1, "FIRST")))
	require.NoError(t, j.AppendEntry(ctx, createTestEntry("run-1", 1, "SECOND")))

	got, err := j.ReadEntries(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "FIRST", got[0].Type)
}

func TestAppendEntry_UnknownRun(t *testing.T) {
	j := createTestJournal(t)
	err := j.AppendEntry(context.Background(), createTestEntry("ghost", 1, "INC"))
	assert.Error(t, err, "foreign key violation expected")
}

func TestAppendEntry_LargeIntegerPrecision(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.BeginRun(ctx, Run{ID: "run-1"}))

	big := ir.IRInt(1<<62 + 1)
	require.NoError(t, j.AppendEntry(ctx, createTestEntry("run-1", 1, "BIG", ir.O("n", big))))

	got, err := j.ReadEntries(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, big, got[0].Payload["n"])
}

func TestReadEntries_EmptyRun(t *testing.T) {
	j := createTestJournal(t)
	got, err := j.ReadEntries(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListRuns_Ordered(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	_, err := j.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	for _, id := range []string{"run-b", "run-c", "run-a"} {
		require.NoError(t, j.BeginRun(ctx, Run{ID: id}))
	}

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"run-a", "run-b", "run-c"}, ids)

	latest, err := j.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-c", latest.ID)
}
