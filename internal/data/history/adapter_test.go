package history

import (
	"classlint/internal/engine/runner"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_RecordAndList(t *testing.T) {
	adapter := NewAdapter(openTemp(t))

	result := runner.Result{
		Findings: sampleFindings(),
		Classes:  5,
		Checks:   []string{"UnusedField", "HashCodeEquals"},
		Duration: 40 * time.Millisecond,
	}
	run, err := adapter.Record("shop", result, 2)
	require.NoError(t, err)

	runs, err := adapter.ListRuns("shop", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, 5, runs[0].ClassCount)
	assert.Equal(t, 3, runs[0].FindingCount)
	assert.Equal(t, 2, runs[0].LoadFailures)
	assert.Equal(t, "UnusedField,HashCodeEquals", runs[0].Checks)

	loaded, err := adapter.LoadRun(run.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Findings, 3)

	counts, err := adapter.CountsByCheck(run.ID)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
}
