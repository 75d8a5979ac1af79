package cgroup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreatesFresh(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "job-1")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDirRecreatesExisting(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "job-1")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), []byte("x"), 0644))

	require.NoError(t, EnsureDir(dir))

	_, err := os.Stat(filepath.Join(dir, "stale"))
	assert.True(t, os.IsNotExist(err), "recreated cgroup dir should not carry over stale files")
}

func TestMemoryControlFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.max"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.swap.max"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.current"), []byte("0"), 0644))

	require.NoError(t, SetMemoryMax(dir, 32*1024*1024))
	require.NoError(t, SetSwapMax(dir, 0))

	maxContent, err := os.ReadFile(filepath.Join(dir, "memory.max"))
	require.NoError(t, err)
	assert.Equal(t, "33554432", string(maxContent))

	swapContent, err := os.ReadFile(filepath.Join(dir, "memory.swap.max"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(swapContent))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.current"), []byte("1048576\n"), 0644))
	current, err := ReadMemoryCurrent(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), current)
}
