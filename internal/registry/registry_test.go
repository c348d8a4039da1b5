package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	require.Len(t, names, 19)
	for i := 1; i < len(names); i++ {
		require.Less(t, names[i-1], names[i])
	}
}

func TestBuildKnownScenario(t *testing.T) {
	def, err := Build("null_baseline")
	require.NoError(t, err)
	require.Equal(t, "null_baseline", def.Name)
	require.NotNil(t, def.RunIteration)
}

func TestBuildUnknownScenario(t *testing.T) {
	_, err := Build("does_not_exist")
	require.Error(t, err)
}

func TestEveryNameBuilds(t *testing.T) {
	for _, name := range Names() {
		def, err := Build(name)
		require.NoErrorf(t, err, "building %s", name)
		require.NotEmptyf(t, def.Columns, "%s: empty column schema", name)
		require.Equalf(t, "run", def.Columns[0], "%s: first column must be run", name)
		require.Equalf(t, "condition_label", def.Columns[1], "%s: second column must be condition_label", name)
	}
}
