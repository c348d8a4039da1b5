package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidSuite(t *testing.T) {
	path := writeSuite(t, `
scenarios:
  - pinned
  - nice_levels
output_dir: results
overrides:
  - name: pinned
    runs_per_condition: 25
`)
	suite, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"pinned", "nice_levels"}, suite.Scenarios)
	require.Equal(t, "results", suite.OutputDir)

	runs, ok := suite.RunsPerConditionFor("pinned")
	require.True(t, ok)
	require.Equal(t, 25, runs)

	_, ok = suite.RunsPerConditionFor("nice_levels")
	require.False(t, ok)
}

func TestLoadRejectsEmptyScenarioName(t *testing.T) {
	path := writeSuite(t, "scenarios:\n  - \"\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/suite.yaml")
	require.Error(t, err)
}
