package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunIDIsNonEmptyAndUnique(t *testing.T) {
	a, err := NewRunID()
	require.NoError(t, err)
	assert.NotEmpty(t, a)

	b, err := NewRunID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
