package sandbox

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// childArg0 is the argv[0] the parent rewrites the re-executed process to
// carry, so cmd/sandrun's front-end can detect "this invocation is the
// cloned child, not a fresh launch" before it parses flags.
const childArg0 = "sandrun-child"

// childSpecEnvVar carries the base64-encoded JSON childSpec across the
// re-exec boundary. Only the fields ChildMain needs are included — stdio is
// passed as inherited file descriptors instead, via ExtraFiles, so the
// child never needs filesystem access to paths the front-end resolved on
// its behalf.
const childSpecEnvVar = "SANDRUN_CHILD_SPEC"

// Fixed ExtraFiles slot indices: exec.Cmd maps ExtraFiles[i] to fd 3+i in
// the child.
const (
	fdInitReader = iota + 3
	fdFinalWriter
	fdStdin
	fdStdout
	fdStderr
)

// childSpec is the subset of Config the child process needs after
// re-exec, serialized across the process boundary since a re-exec starts a
// fresh address space.
type childSpec struct {
	Rootfs          string   `json:"rootfs"`
	OverlayLowerdir string   `json:"overlay_lowerdir"`
	OverlayUpperdir string   `json:"overlay_upperdir"`
	OverlayWorkdir  string   `json:"overlay_workdir"`
	Workdir         string   `json:"workdir"`
	Args            []string `json:"args"`
	Environ         []string `json:"environ"`
}

// IsChildReexec reports whether the current process is the re-executed
// child, detected by the rewritten argv[0].
func IsChildReexec() bool {
	return len(os.Args) > 0 && filepath.Base(os.Args[0]) == childArg0
}

// buildChildCommand constructs the exec.Cmd that re-executes the current
// binary into the set of new namespaces spec.md §4.3 requires. The two
// sync-pipe ends the child will use, and the three stdio files the parent
// already opened on the payload's behalf, are passed as ExtraFiles rather
// than reopened by the child.
func buildChildCommand(cfg *Config, initReader, finalWriter, stdin, stdout, stderr *os.File) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve self executable path: %w", err)
	}

	spec := childSpec{
		Rootfs:          cfg.Rootfs,
		OverlayLowerdir: cfg.OverlayLowerdir,
		OverlayUpperdir: cfg.OverlayUpperdir,
		OverlayWorkdir:  cfg.OverlayWorkdir,
		Workdir:         cfg.Workdir,
		Args:            cfg.Args,
		Environ:         cfg.Environ,
	}
	encoded, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal child spec: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Args = []string{childArg0}
	cmd.Env = []string{childSpecEnvVar + "=" + base64.StdEncoding.EncodeToString(encoded)}
	cmd.ExtraFiles = []*os.File{initReader, finalWriter, stdin, stdout, stderr}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: unix.CLONE_NEWUSER |
			unix.CLONE_NEWPID |
			unix.CLONE_NEWNS |
			unix.CLONE_NEWNET |
			unix.CLONE_NEWIPC |
			unix.CLONE_NEWUTS,
	}
	return cmd, nil
}

// readChildSpec decodes the childSpec the parent passed via environment
// variable.
func readChildSpec() (*childSpec, error) {
	encoded := os.Getenv(childSpecEnvVar)
	if encoded == "" {
		return nil, fmt.Errorf("%s not set; not a valid child re-exec", childSpecEnvVar)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode child spec: %w", err)
	}
	var spec childSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal child spec: %w", err)
	}
	return &spec, nil
}
