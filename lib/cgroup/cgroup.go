// Package cgroup manages a single cgroup v2 directory: creation, process
// placement, and the memory controller's limit and usage files. It is the
// only code in sandrun that touches /sys/fs/cgroup on the host side; the
// child only ever sees the namespaced, read-only view mounted at
// /sys/fs/cgroup inside the sandbox.
package cgroup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsureDir (re)creates the cgroup directory at path. An existing directory
// is removed first so the launcher owns a clean cgroup with no leftover
// controller state from a prior run; ENOENT on the removal and EEXIST on the
// creation (a racing creator) are both tolerated, matching the transient-
// error allow-list for cgroup setup.
func EnsureDir(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing cgroup dir %s: %w", path, err)
	}
	if err := os.Mkdir(path, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create cgroup dir %s: %w", path, err)
	}
	return nil
}

// AddProcess writes pid into <path>/cgroup.procs, placing that process (and
// any of its future children) into this cgroup.
func AddProcess(path string, pid int) error {
	return writeDecimal(filepath.Join(path, "cgroup.procs"), int64(pid))
}

// SetMemoryMax writes the memory.max control file, the hard ceiling the
// kernel itself enforces independent of the supervisor's own polling-based
// SIGKILL enforcement.
func SetMemoryMax(path string, limitBytes int64) error {
	return writeDecimal(filepath.Join(path, "memory.max"), limitBytes)
}

// SetSwapMax writes memory.swap.max. sandrun always forbids swap for a
// sandboxed payload, so callers pass 0.
func SetSwapMax(path string, limitBytes int64) error {
	return writeDecimal(filepath.Join(path, "memory.swap.max"), limitBytes)
}

// ReadMemoryCurrent reads the current memory usage reported by the kernel
// for this cgroup, in bytes.
func ReadMemoryCurrent(path string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(path, "memory.current"))
	if err != nil {
		return 0, fmt.Errorf("read memory.current: %w", err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse memory.current %q: %w", data, err)
	}
	return v, nil
}

func writeDecimal(path string, v int64) error {
	if err := os.WriteFile(path, []byte(strconv.FormatInt(v, 10)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
