package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statecore/internal/compiler"
	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/journal"
	"github.com/roach88/statecore/internal/store"
	"github.com/roach88/statecore/internal/testutil"
)

const specsDir = "testdata/specs"

func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_CounterResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/counter_basics.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	require.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, int64(5), result.Commits)
	assert.Equal(t, 5, result.Notifications)
	assert.Equal(t, ir.IRInt(8), result.State["counter"])
	require.Len(t, result.Trace, 6)
	assert.Equal(t, "reduce", result.Trace[5].Error)
	assert.Empty(t, result.RunID)
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:  "unexpected",
		Specs: specsDir,
		Steps: []Step{{Dispatch: "BOOM"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
	assert.Contains(t, result.Errors[0], "counter exploded")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:  "missing_error",
		Specs: specsDir,
		Steps: []Step{{Dispatch: "INC", ExpectError: ErrorKindReduce}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected reduce error, dispatch succeeded")
}

func TestRun_ExpectedErrorKind(t *testing.T) {
	tests := []struct {
		name   string
		expect string
		pass   bool
	}{
		{"matching kind", ErrorKindReduce, true},
		{"any kind", ErrorKindAny, true},
		{"wrong kind", ErrorKindPanic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:  "kinds",
				Specs: specsDir,
				Steps: []Step{{Dispatch: "BOOM", ExpectError: tt.expect}},
			}
			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_BatchStopsAtFirstFailure(t *testing.T) {
	scenario := &Scenario{
		Name:  "batch_failure",
		Specs: specsDir,
		Steps: []Step{{
			Batch: []BatchAction{
				{Dispatch: "INC"},
				{Dispatch: "BOOM"},
				{Dispatch: "INC"},
			},
			ExpectError: ErrorKindReduce,
		}},
		Assertions: []Assertion{
			{Type: AssertStateEquals, Path: "counter", Value: 1},
			{Type: AssertCommitCount, Count: 1},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"INC", "BOOM", "INC"}, result.Trace[0].Actions)
}

func TestRun_AssertionFailuresReported(t *testing.T) {
	scenario := &Scenario{
		Name:  "bad_assertions",
		Specs: specsDir,
		Steps: []Step{{Dispatch: "INC"}},
		Assertions: []Assertion{
			{Type: AssertStateEquals, Path: "counter", Value: 2},
			{Type: AssertStateEquals, Path: "missing.path", Value: 1},
			{Type: AssertCommitCount, Count: 3},
			{Type: AssertNotifyCount, Count: 0},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "counter: expected 2, got 1")
	assert.Contains(t, result.Errors[1], "path not found")
	assert.Contains(t, result.Errors[2], "expected 3 commits, got 1")
	assert.Contains(t, result.Errors[3], "expected 0 notifications, got 1")
}

func TestRun_BadSpecsDirectory(t *testing.T) {
	scenario := &Scenario{
		Name:  "no_specs",
		Specs: filepath.Join(t.TempDir(), "missing"),
		Steps: []Step{{Dispatch: "INC"}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading specs for no_specs")
}

func TestRun_CancelledContext(t *testing.T) {
	scenario := &Scenario{
		Name:  "cancelled",
		Specs: specsDir,
		Steps: []Step{{Dispatch: "INC"}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, scenario)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WithJournalReplays(t *testing.T) {
	ctx := context.Background()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	scenario, err := LoadScenario("testdata/scenarios/todo_batch.yaml")
	require.NoError(t, err)

	result, err := Run(ctx, scenario, WithJournal(j, testutil.NewFixedRunIDGenerator("todo-run")))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "todo-run", result.RunID)

	run, err := j.ReadRun(ctx, "todo-run")
	require.NoError(t, err)
	assert.Equal(t, "todo_batch", run.Label)
	assert.NotEmpty(t, run.SpecHash)

	n, err := j.CountEntries(ctx, "todo-run")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	bundle, errs := compiler.LoadDir(specsDir, compiler.LoadModeFailFast)
	require.Empty(t, errs)
	root, err := bundle.Reducer()
	require.NoError(t, err)

	report, err := journal.Verify(ctx, j, "todo-run", store.MustNew(root))
	require.NoError(t, err)
	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
	assert.Equal(t, 4, report.Entries)
}
