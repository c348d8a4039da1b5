package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenWritesHeaderThenRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := Open(path, []string{"run", "runtime_ns"}, OverwritePolicyAlways)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"1", "1000"}))
	require.NoError(t, w.WriteRecord([]string{"2", "2000"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "run,runtime_ns\n1,1000\n2,2000\n", string(data))
}

func TestWriteRecordRejectsWrongArity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w, err := Open(path, []string{"a", "b"}, OverwritePolicyAlways)
	require.NoError(t, err)
	defer w.Close()

	err = w.WriteRecord([]string{"1"})
	require.Error(t, err)
}

func TestOpenNeverPolicyRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	_, err := Open(path, []string{"a"}, OverwritePolicyNever)
	require.Error(t, err)
}

func TestOpenAlwaysPolicyOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content"), 0o644))

	w, err := Open(path, []string{"a"}, OverwritePolicyAlways)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a\n", string(data))
}

func TestFormatRate3And6(t *testing.T) {
	require.Equal(t, "1.500", FormatRate3(1.5))
	require.Equal(t, "0.123457", FormatRate6(0.1234567))
}

func TestFormatSignedIntHandlesSentinel(t *testing.T) {
	require.Equal(t, "-1", FormatSignedInt(-1))
	require.Equal(t, "3", FormatSignedInt(3))
}
