package timing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNowNSMonotonic(t *testing.T) {
	first, err := NowNS()
	require.NoError(t, err)

	second, err := NowNS()
	require.NoError(t, err)

	require.GreaterOrEqual(t, second, first)
}

func TestNowNSNonZero(t *testing.T) {
	ns, err := NowNS()
	require.NoError(t, err)
	require.NotZero(t, ns)
}
