package kcounters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func withFixtures(t *testing.T, status, stat string) {
	t.Helper()
	dir := t.TempDir()

	oldStatus, oldStat := statusPath, statPath
	t.Cleanup(func() {
		statusPath, statPath = oldStatus, oldStat
	})

	if status != "" {
		p := filepath.Join(dir, "status")
		require.NoError(t, os.WriteFile(p, []byte(status), 0o644))
		statusPath = p
	} else {
		statusPath = filepath.Join(dir, "missing-status")
	}

	if stat != "" {
		p := filepath.Join(dir, "stat")
		require.NoError(t, os.WriteFile(p, []byte(stat), 0o644))
		statPath = p
	} else {
		statPath = filepath.Join(dir, "missing-stat")
	}
}

func TestReadParsesStatusCounters(t *testing.T) {
	withFixtures(t, "Name:\tfoo\nvoluntary_ctxt_switches:\t42\nnonvoluntary_ctxt_switches:\t7\n", "")
	s := Read()
	require.Equal(t, uint64(42), s.VoluntaryCtxtSwitches)
	require.Equal(t, uint64(7), s.NonvoluntaryCtxtSwitches)
}

func TestReadParsesStatPageFaultsWithSpacesInComm(t *testing.T) {
	// comm field contains a space and parentheses to exercise the
	// last-')' split instead of naive field splitting.
	stat := "1234 (my weird (proc)) S 1 1234 1234 0 -1 4194304 111 0 222 0 0 0 0 0 20 0 1 0\n"
	withFixtures(t, "", stat)
	s := Read()
	require.Equal(t, uint64(111), s.MinorPageFaults)
	require.Equal(t, uint64(222), s.MajorPageFaults)
}

func TestReadDegradesToZeroOnMissingFiles(t *testing.T) {
	withFixtures(t, "", "")
	s := Read()
	require.Zero(t, s.VoluntaryCtxtSwitches)
	require.Zero(t, s.NonvoluntaryCtxtSwitches)
	require.Zero(t, s.MinorPageFaults)
	require.Zero(t, s.MajorPageFaults)
}
