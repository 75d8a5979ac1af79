package cfgfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutDefaultsFileUsesEnv(t *testing.T) {
	t.Setenv("SANDRUN_LOG_LEVEL", "debug")
	t.Setenv("SANDRUN_OTEL_ENABLED", "true")

	d, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", d.LogLevel)
	assert.True(t, d.OtelEnabled)
}

func TestLoadDefaultsFileOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cgroup_root: /sys/fs/cgroup/sandrun\nlog_level: warn\ndefault_time_limit_ms: 5000\n"), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/sandrun", d.CgroupRoot)
	assert.Equal(t, "warn", d.LogLevel)
	assert.Equal(t, int64(5000), d.DefaultTimeLimitMS)
}
