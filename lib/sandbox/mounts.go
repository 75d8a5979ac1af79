package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

// mountTable returns the fixed set of mounts constructed under the new root
// once the overlay is in place, modeled as the same typed []specs.Mount
// shape the OCI runtime-spec uses for a container's mount list. Order
// matters: /dev must exist before /dev/pts, /dev/shm, and /dev/mqueue are
// mounted under it.
func mountTable() []specs.Mount {
	return []specs.Mount{
		{
			Destination: "/sys",
			Type:        "sysfs",
			Source:      "sysfs",
			Options:     []string{"noexec", "nosuid", "nodev", "ro"},
		},
		{
			Destination: "/proc",
			Type:        "proc",
			Source:      "proc",
			Options:     []string{"noexec", "nosuid", "nodev"},
		},
		{
			Destination: "/dev",
			Type:        "tmpfs",
			Source:      "tmpfs",
			Options:     []string{"nosuid", "strictatime", "mode=755", "size=65536k"},
		},
		{
			Destination: "/dev/pts",
			Type:        "devpts",
			Source:      "devpts",
			Options:     []string{"nosuid", "noexec", "newinstance", "ptmxmode=0666", "mode=0620"},
		},
		{
			Destination: "/dev/shm",
			Type:        "tmpfs",
			Source:      "shm",
			Options:     []string{"noexec", "nosuid", "nodev", "mode=1777", "size=65536k"},
		},
		{
			Destination: "/dev/mqueue",
			Type:        "mqueue",
			Source:      "mqueue",
			Options:     []string{"noexec", "nosuid", "nodev"},
		},
		{
			Destination: "/sys/fs/cgroup",
			Type:        "cgroup2",
			Source:      "cgroup2",
			Options:     []string{"noexec", "nosuid", "nodev", "relatime", "ro"},
		},
	}
}

// mountFlags maps the flag-shaped options spec.md pins per mount to their
// numeric MS_* constants. Anything not in this table is treated as a data
// option (e.g. "mode=755") and passed through the mount syscall's data
// argument instead of its flags argument.
var mountFlags = map[string]uintptr{
	"ro":          unix.MS_RDONLY,
	"nosuid":      unix.MS_NOSUID,
	"nodev":       unix.MS_NODEV,
	"noexec":      unix.MS_NOEXEC,
	"relatime":    unix.MS_RELATIME,
	"strictatime": unix.MS_STRICTATIME,
}

func parseMountOptions(options []string) (uintptr, string) {
	flagOpts, dataOpts := lo.FilterReject(options, func(opt string, _ int) bool {
		_, ok := mountFlags[opt]
		return ok
	})
	var flags uintptr
	for _, f := range lo.Map(flagOpts, func(opt string, _ int) uintptr { return mountFlags[opt] }) {
		flags |= f
	}
	return flags, strings.Join(dataOpts, ",")
}

// applyMounts creates each destination directory (mode 0755, EEXIST
// tolerated) under root and mounts it with the exact numeric flags pinned
// by spec.md.
func applyMounts(root string, mounts []specs.Mount) error {
	for _, m := range mounts {
		target := filepath.Join(root, m.Destination)
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", target, err)
		}
		flags, data := parseMountOptions(m.Options)
		if err := unix.Mount(m.Source, target, m.Type, flags, data); err != nil {
			return fmt.Errorf("mount %s at %s: %w", m.Type, target, err)
		}
	}
	return nil
}
