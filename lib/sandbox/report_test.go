package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, WriteReport(path, Report{ElapsedMS: 123, PeakMemoryBytes: 456, ExitCode: 0}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time 123\nmemory 456\nexit_code 0\n", string(data))
}

func TestWriteReportEmptyPathIsNoop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteReport("", Report{ElapsedMS: 1, PeakMemoryBytes: 1, ExitCode: 0}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteReportTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is much longer\n"), 0644))

	require.NoError(t, WriteReport(path, Report{ElapsedMS: 1, PeakMemoryBytes: 2, ExitCode: -1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time 1\nmemory 2\nexit_code -1\n", string(data))
}
