package hwcounters

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupDegradesGracefullyWhenUnavailable(t *testing.T) {
	g := New()
	err := g.Init()
	defer g.Close()

	if err != nil {
		require.False(t, g.Available)
		// Start/Stop/Read must remain safe no-ops.
		g.Start()
		g.Stop()
		d := g.Read()
		require.Zero(t, d.Instructions)
		require.Zero(t, d.Cycles)
		return
	}

	require.True(t, g.Available)
	g.Start()
	for i := 0; i < 1_000_000; i++ {
		_ = i * i
	}
	g.Stop()
	d := g.Read()
	// Cycles should be nonzero on any real CPU after a million-iteration
	// loop; skip the assertion in sandboxed/virtualized CI where PMU
	// access is often silently zeroed.
	if d.Cycles == 0 {
		t.Skip("hardware counters opened but returned zero cycles, likely a virtualized/sandboxed PMU")
	}
	require.Positive(t, d.Cycles)
}

func TestDeltasIPCZeroDenominator(t *testing.T) {
	d := Deltas{}
	require.Zero(t, d.IPC())
	require.Zero(t, d.BranchMissRate())
}

func TestDeltasIPCComputation(t *testing.T) {
	d := Deltas{Instructions: 300, Cycles: 100, Branches: 50, BranchMisses: 5}
	require.InDelta(t, 3.0, d.IPC(), 1e-9)
	require.InDelta(t, 0.1, d.BranchMissRate(), 1e-9)
}
