package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestParseMountOptionsSeparatesFlagsFromData(t *testing.T) {
	flags, data := parseMountOptions([]string{"nosuid", "strictatime", "mode=755", "size=65536k"})
	assert.Equal(t, uintptr(unix.MS_NOSUID|unix.MS_STRICTATIME), flags)
	assert.Equal(t, "mode=755,size=65536k", data)
}

func TestParseMountOptionsNoData(t *testing.T) {
	flags, data := parseMountOptions([]string{"noexec", "nosuid", "nodev", "ro"})
	assert.Equal(t, uintptr(unix.MS_NOEXEC|unix.MS_NOSUID|unix.MS_NODEV|unix.MS_RDONLY), flags)
	assert.Empty(t, data)
}

func TestMountTableCoversAllSpecMounts(t *testing.T) {
	table := mountTable()
	destinations := make([]string, 0, len(table))
	for _, m := range table {
		destinations = append(destinations, m.Destination)
	}
	assert.Equal(t, []string{
		"/sys", "/proc", "/dev", "/dev/pts", "/dev/shm", "/dev/mqueue", "/sys/fs/cgroup",
	}, destinations)
}
