package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_Deterministic(t *testing.T) {
	db, runID := recordRun(t)

	out, err := executeCommand(t, "replay", testSpecs, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+runID+": 4 entries")
	assert.NotContains(t, out, "spec changed")
}

func TestReplay_JSON(t *testing.T) {
	db, runID := recordRun(t)

	out, err := executeCommand(t, "replay", testSpecs, "--db", db, "--run", runID, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Runs, 1)
	assert.True(t, resp.Data.Runs[0].SpecMatch)
	assert.Equal(t, 4, resp.Data.Runs[0].Entries)
}

func TestReplay_DivergentSpecs(t *testing.T) {
	db, _ := recordRun(t)

	// Same slices, but INC now adds two.
	dir := t.TempDir()
	writeFile(t, dir, "counter.cue", `
slice: counter: {
	initial: 0
	on: INC: {op: "add", by: 2}
	on: ADD: {op: "add", field: "amount"}
}
slice: todos: {
	initial: []
	on: ADD_TODO: {op: "append", field: "text"}
}
slice: settings: {
	initial: {theme: "light", page_size: 20}
	on: UPDATE_SETTINGS: {op: "merge"}
}
`)

	out, err := executeCommand(t, "replay", dir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "spec changed")
	assert.Contains(t, out, "seq 1 INC: want ")
}

func TestReplay_UnknownRun(t *testing.T) {
	db, _ := recordRun(t)

	_, err := executeCommand(t, "replay", testSpecs, "--db", db, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
