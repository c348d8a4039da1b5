package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnlineCPUsNonEmpty(t *testing.T) {
	cpus, err := OnlineCPUs()
	require.NoError(t, err)
	require.NotZero(t, cpus.Cardinality())
}

func TestPinToCPUThenCurrentCPU(t *testing.T) {
	online, err := OnlineCPUs()
	require.NoError(t, err)
	if online.Cardinality() == 0 {
		t.Skip("no online CPUs reported")
	}
	target := online.ToSlice()[0]

	LockOSThread()
	defer UnlockOSThread()

	require.NoError(t, PinToCPU(target))
	require.Equal(t, target, CurrentCPU())
}

func TestPinToCPURejectsOfflineIndex(t *testing.T) {
	err := PinToCPU(1 << 20)
	require.Error(t, err)
}

func TestSetNiceRejectsOutOfRange(t *testing.T) {
	require.Error(t, SetNice(-100))
	require.Error(t, SetNice(100))
}

func TestYieldNow(t *testing.T) {
	require.NoError(t, YieldNow())
}
