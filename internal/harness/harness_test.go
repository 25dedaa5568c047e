package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every scenario under testdata/scenarios and
// compares its trace against the matching golden file.
func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, "load %s", path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario failures: %v", result.Errors)
		})
	}
}

func TestRun_ReportsUnexpectedOutcome(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
description: "a step whose expectation does not match reality"
steps:
  - op: deposit
    caller: alice
    vault: main
    amount: 5
`))
	require.NoError(t, err)

	// Deposit into a vault that was never initialized. The step implicitly
	// expects OK, so the run must fail without erroring out.
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "NOT_INITIALIZED")

	// The trace still records what actually happened.
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "NOT_INITIALIZED", result.Trace[0].Outcome)
	assert.Equal(t, "alice", result.Trace[0].Caller)
}

func TestRun_AssertionFailuresAreCollected(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: failing_assertions
description: "every failing assertion is reported, not just the first"
steps:
  - op: initialize_vault
    caller: alice
    vault: main
    capacity: 64
  - op: deposit
    caller: alice
    vault: main
    amount: 10
assertions:
  - type: balance
    vault: main
    balance: 11
  - type: state
    vault: main
    state: CLOSED
  - type: audit_count
    outcome: OK
    count: 1
  - type: balance
    vault: missing
    balance: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 4)
}

func TestRun_VaultLabelsGetStableHandles(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: two_vaults
description: "labels map to distinct fixed handles in order of first use"
steps:
  - op: initialize_vault
    caller: alice
    vault: first
    capacity: 16
  - op: initialize_vault
    caller: bob
    vault: second
    capacity: 16
  - op: deposit
    caller: alice
    vault: first
    amount: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "failures: %v", result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", result.Trace[0].Handle)
	assert.Equal(t, "00000000-0000-4000-8000-000000000002", result.Trace[1].Handle)
	assert.Equal(t, result.Trace[0].Handle, result.Trace[2].Handle)
}
