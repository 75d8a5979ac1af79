// Package sandbox implements the namespace/cgroup sandbox launcher: cloning
// a child into a fresh set of namespaces, assembling its overlay root,
// handing privileged setup to the parent, and supervising the run for time
// and memory limit enforcement.
package sandbox

import (
	"fmt"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Config is the immutable record of sandbox inputs. It is constructed once
// by the front-end and never mutated after Validate succeeds.
type Config struct {
	// Stdin, Stdout, Stderr are optional file paths for stream redirection.
	// An empty string means the sandboxed process inherits the launcher's
	// own corresponding descriptor.
	Stdin, Stdout, Stderr string

	// Rootfs is the existing empty directory used as the overlay mount
	// point and pivot target.
	Rootfs string

	// OverlayLowerdir, OverlayUpperdir, OverlayWorkdir form the overlay
	// mounted at Rootfs.
	OverlayLowerdir string
	OverlayUpperdir string
	OverlayWorkdir  string

	// Workdir is the initial working directory inside the sandbox.
	Workdir string

	// Args is the non-empty argument vector; Args[0] is the payload
	// executable.
	Args []string

	// Environ is the ordered KEY=VALUE environment handed to the payload.
	Environ []string

	// CgroupPath is the absolute host-visible path to a cgroup v2
	// directory the launcher owns for the duration of the run.
	CgroupPath string

	// MemoryLimit is the memory ceiling in bytes.
	MemoryLimit int64

	// TimeLimit is the wall-clock ceiling.
	TimeLimit time.Duration

	// Report is an optional output path for the final execution report.
	Report string
}

// NewConfig returns a Config with Workdir defaulted to "/", matching
// spec.md's framing of the default as a front-end concern realized once at
// construction rather than inside Validate.
func NewConfig() *Config {
	return &Config{Workdir: "/"}
}

// Validate enforces the configuration invariants: a non-empty argument
// vector, all required path fields present and absolute, and both limits
// strictly positive. Each path is also resolved with securejoin under "/",
// and an error from that resolution (for example a symlink loop) fails
// validation; paths containing ".." components are not rejected.
func (c *Config) Validate() error {
	if len(c.Args) == 0 {
		return fmt.Errorf("args must be non-empty")
	}

	paths := map[string]string{
		"rootfs":            c.Rootfs,
		"overlay-lowerdir":  c.OverlayLowerdir,
		"overlay-upperdir":  c.OverlayUpperdir,
		"overlay-workdir":   c.OverlayWorkdir,
		"cgroup-path":       c.CgroupPath,
	}
	for name, p := range paths {
		if p == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if _, err := securejoin.SecureJoin("/", p); err != nil {
			return fmt.Errorf("%s %q is not a safe absolute path: %w", name, p, err)
		}
		if p[0] != '/' {
			return fmt.Errorf("%s %q must be absolute", name, p)
		}
	}

	if c.MemoryLimit <= 0 {
		return fmt.Errorf("memory limit must be positive, got %d", c.MemoryLimit)
	}
	if c.TimeLimit <= 0 {
		return fmt.Errorf("time limit must be positive, got %s", c.TimeLimit)
	}

	return nil
}
