package sandbox

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeCgroupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory.current"), []byte("0\n"), 0644))
	return dir
}

func TestSuperviseHappyPath(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "true")
	require.NoError(t, cmd.Start())

	cfg := &Config{
		CgroupPath:  fakeCgroupDir(t),
		MemoryLimit: 1 << 30,
		TimeLimit:   5 * time.Second,
	}

	result, err := supervise(discardLogger(), cmd.Process.Pid, cfg, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.GreaterOrEqual(t, result.ElapsedMS, int64(0))
}

func TestSuperviseKillsOnTimeBreach(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "sleep 5")
	require.NoError(t, cmd.Start())

	cfg := &Config{
		CgroupPath:  fakeCgroupDir(t),
		MemoryLimit: 1 << 30,
		TimeLimit:   50 * time.Millisecond,
	}

	start := time.Now()
	result, err := supervise(discardLogger(), cmd.Process.Pid, cfg, start, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, result.ExitCode)
	assert.GreaterOrEqual(t, result.ElapsedMS, int64(50))
}

func TestKillTolerantIdempotent(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "true")
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	assert.NoError(t, killTolerant(cmd.Process.Pid), "killing an already-exited process must tolerate ESRCH")
	assert.NoError(t, killTolerant(cmd.Process.Pid), "a second kill must also be tolerated")
}
