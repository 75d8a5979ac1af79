package hostinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalMemoryBytes(t *testing.T) {
	total, err := TotalMemoryBytes()
	require.NoError(t, err)
	assert.Greater(t, total, int64(0))
}

func TestTotalLogicalCPUs(t *testing.T) {
	n, err := TotalLogicalCPUs()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
