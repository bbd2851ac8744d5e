package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_PassingScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ cli_counter")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	specs, err := filepath.Abs(testSpecs)
	require.NoError(t, err)
	path := writeFile(t, dir, "failing.yaml", `
name: failing
specs: `+specs+`
steps:
  - dispatch: INC
assertions:
  - type: state_equals
    path: counter
    value: 5
`)

	out, err := executeCommand(t, "test", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "counter: expected 5, got 1")
}

func TestTest_LoadErrorIsFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", "name: broken\n")

	out, err := executeCommand(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failed to load scenario")
}

func TestTest_Filter(t *testing.T) {
	out, err := executeCommand(t, "test", "testdata/scenarios", "--filter", "nomatch*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingPath(t *testing.T) {
	_, err := executeCommand(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_GoldenUpdateThenCompare(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	_, err := executeCommand(t, "test", "testdata/scenarios", "--golden-dir", golden, "--update")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(golden, "cli_counter.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario":"cli_counter"`)

	_, err = executeCommand(t, "test", "testdata/scenarios", "--golden-dir", golden)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(golden, "cli_counter.golden"), []byte("{}"), 0644))
	out, err := executeCommand(t, "test", "testdata/scenarios", "--golden-dir", golden)
	require.Error(t, err)
	assert.Contains(t, out, "trace differs from")
}

func TestTest_UpdateRequiresGoldenDir(t *testing.T) {
	_, err := executeCommand(t, "test", "testdata/scenarios", "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
