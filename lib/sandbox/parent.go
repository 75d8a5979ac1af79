package sandbox

import (
	"fmt"
	"os"

	"github.com/judgebox/sandrun/lib/cgroup"
)

// parentSetup performs every privileged action spec.md §4.4 requires before
// the child may proceed past its initialize-pipe wait: the UID/GID map
// writes that populate the child's user namespace, and cgroup placement
// with the memory/swap limits. It does not itself release the child; the
// caller closes the initialize pipe's writer once this returns nil.
func parentSetup(pid int, cfg *Config) error {
	if err := writeProcFile(pid, "uid_map", fmt.Sprintf("0 %d 1\n", os.Getuid())); err != nil {
		return err
	}
	// setgroups must be denied before a non-root gid map can be written.
	if err := writeProcFile(pid, "setgroups", "deny\n"); err != nil {
		return err
	}
	if err := writeProcFile(pid, "gid_map", fmt.Sprintf("0 %d 1\n", os.Getgid())); err != nil {
		return err
	}

	if err := cgroup.EnsureDir(cfg.CgroupPath); err != nil {
		return err
	}
	if err := cgroup.AddProcess(cfg.CgroupPath, pid); err != nil {
		return err
	}
	if err := cgroup.SetMemoryMax(cfg.CgroupPath, cfg.MemoryLimit); err != nil {
		return err
	}
	if err := cgroup.SetSwapMax(cfg.CgroupPath, 0); err != nil {
		return err
	}

	return nil
}

func writeProcFile(pid int, name, content string) error {
	path := fmt.Sprintf("/proc/%d/%s", pid, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
