package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psantana5/linux-reality-check/internal/hwcounters"
)

func TestBeginEndProducesPositiveRuntime(t *testing.T) {
	s, err := Begin(nil)
	require.NoError(t, err)

	sum := 0
	for i := 0; i < 100_000; i++ {
		sum += i
	}
	require.NotEqual(t, -1, sum) // keep the loop from being optimized away

	require.NoError(t, End(s, nil))
	require.Positive(t, s.RuntimeNS)
	require.GreaterOrEqual(t, s.VoluntaryCtxtSwitches, uint64(0))
}

func TestEndWithoutBeginErrors(t *testing.T) {
	s := &Snapshot{}
	err := End(s, nil)
	require.Error(t, err)
}

func TestSubClampedNeverGoesNegative(t *testing.T) {
	require.Equal(t, uint64(0), subClamped(5, 10))
	require.Equal(t, uint64(5), subClamped(10, 5))
}

func TestEvaluateIPCZeroDenominator(t *testing.T) {
	v, err := Evaluate("ipc", map[string]interface{}{"cycles": 0.0, "instructions": 100.0})
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestEvaluateIPCComputed(t *testing.T) {
	v, err := Evaluate("ipc", map[string]interface{}{"cycles": 100.0, "instructions": 300.0})
	require.NoError(t, err)
	require.InDelta(t, 3.0, v, 1e-9)
}

func TestEvaluateUnknownFormula(t *testing.T) {
	_, err := Evaluate("does_not_exist", nil)
	require.Error(t, err)
}

func TestEvaluateNsPerOperation(t *testing.T) {
	v, err := Evaluate("ns_per_operation", map[string]interface{}{"runtime_ns": 1000.0, "iterations": 10.0})
	require.NoError(t, err)
	require.InDelta(t, 100.0, v, 1e-9)
}

func TestVarsFromSnapshot(t *testing.T) {
	s := &Snapshot{RuntimeNS: 42, HW: hwcounters.Deltas{Instructions: 1, Cycles: 2}}
	vars := VarsFromSnapshot(s)
	require.Equal(t, float64(42), vars["runtime_ns"])
	require.Equal(t, float64(1), vars["instructions"])
}
