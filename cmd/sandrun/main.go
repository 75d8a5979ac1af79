// Command sandrun launches a single untrusted command inside a freshly
// created set of Linux namespaces, confines it with a cgroup v2 memory
// controller, enforces a wall-clock and memory ceiling, and writes a
// structured execution report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/samber/lo"

	"github.com/judgebox/sandrun/lib/cfgfile"
	"github.com/judgebox/sandrun/lib/hostinfo"
	"github.com/judgebox/sandrun/lib/logger"
	sandrunotel "github.com/judgebox/sandrun/lib/otel"
	"github.com/judgebox/sandrun/lib/sandbox"
)

// envFlags allows the repeatable --env flag, following the teacher's
// cmd/exec envFlags pattern.
type envFlags []string

func (e *envFlags) String() string { return strings.Join(*e, ",") }

func (e *envFlags) Set(value string) error {
	*e = append(*e, value)
	return nil
}

func main() {
	if sandbox.IsChildReexec() {
		sandbox.ChildMain()
		return
	}

	var envVars envFlags
	stdin := flag.String("stdin", "", "path to redirect as stdin (default: inherit)")
	stdout := flag.String("stdout", "", "path to redirect as stdout (default: inherit)")
	stderr := flag.String("stderr", "", "path to redirect as stderr (default: inherit)")
	rootfs := flag.String("rootfs", "", "existing empty directory used as overlay mount point and pivot target (required)")
	lowerdir := flag.String("overlay-lowerdir", "", "overlay lower directory (required)")
	upperdir := flag.String("overlay-upperdir", "", "overlay upper directory (required)")
	workdirOverlay := flag.String("overlay-workdir", "", "overlay work directory (required)")
	workdir := flag.String("workdir", "/", "initial working directory inside the sandbox")
	cgroupPath := flag.String("cgroup-path", "", "absolute path to a cgroup v2 directory the launcher owns (required)")
	timeLimitMS := flag.Int64("time-limit", 0, "wall-clock time limit in milliseconds (required)")
	memoryLimit := flag.String("memory-limit", "", "memory limit in bytes, or a human size like 512MiB (required)")
	report := flag.String("report", "", "optional path to write the execution report")
	defaultsPath := flag.String("defaults", "", "optional YAML file of operator defaults")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Var(&envVars, "env", "environment variable KEY=VALUE for the payload (repeatable)")
	flag.Parse()

	defaults, err := cfgfile.Load(*defaultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandrun: %v\n", err)
		os.Exit(1)
	}

	cfg := sandbox.NewConfig()
	cfg.Stdin = *stdin
	cfg.Stdout = *stdout
	cfg.Stderr = *stderr
	cfg.Rootfs = *rootfs
	cfg.OverlayLowerdir = *lowerdir
	cfg.OverlayUpperdir = *upperdir
	cfg.OverlayWorkdir = *workdirOverlay
	if *workdir != "" {
		cfg.Workdir = *workdir
	}
	cfg.Args = flag.Args()
	cfg.Environ = envVars
	cfg.CgroupPath = firstNonEmpty(*cgroupPath, defaults.CgroupRoot)
	cfg.Report = *report

	timeLimit := time.Duration(*timeLimitMS) * time.Millisecond
	if *timeLimitMS == 0 && defaults.DefaultTimeLimitMS > 0 {
		timeLimit = time.Duration(defaults.DefaultTimeLimitMS) * time.Millisecond
	}
	cfg.TimeLimit = timeLimit

	memLimitStr := firstNonEmpty(*memoryLimit, defaults.DefaultMemoryLimit)
	memBytes, err := parseMemoryLimit(memLimitStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandrun: invalid --memory-limit %q: %v\n", memLimitStr, err)
		os.Exit(1)
	}
	cfg.MemoryLimit = memBytes

	level := *logLevel
	if level == "" {
		level = defaults.LogLevel
	}
	logCfg := logger.NewConfig()
	if level != "" {
		logCfg.DefaultLevel = logger.ParseLevel(level)
	}

	otelCfg := sandrunotel.Config{
		Enabled:           defaults.OtelEnabled,
		Endpoint:          defaults.OtelEndpoint,
		ServiceName:       "sandrun",
		ServiceInstanceID: firstNonEmpty(defaults.OtelServiceInstance, hostnameOrUnknown()),
		Insecure:          true,
		Version:           "dev",
		Env:               "prod",
	}

	ctx := context.Background()
	launcher, shutdown, err := InitializeLauncher(ctx, logCfg, otelCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandrun: initialize: %v\n", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	if totalMem, err := hostinfo.TotalMemoryBytes(); err == nil {
		cpus, _ := hostinfo.TotalLogicalCPUs()
		launcher.ParentLog.Info("host capacity",
			"total_memory_bytes", totalMem, "total_logical_cpus", cpus, "requested_memory_limit", cfg.MemoryLimit)
		if cfg.MemoryLimit > totalMem {
			fmt.Fprintf(os.Stderr, "sandrun: --memory-limit %d exceeds host total memory %d\n", cfg.MemoryLimit, totalMem)
			os.Exit(1)
		}
	} else {
		launcher.ParentLog.Warn("host capacity unavailable", "error", err)
	}

	if _, err := launcher.Launch(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "sandrun: %v\n", err)
		os.Exit(1)
	}
}

// parseMemoryLimit accepts either a bare decimal byte count or a human size
// like "512MiB"/"1GB", per SPEC_FULL.md's datasize-based supplement to
// spec.md's plain-integer-bytes contract.
func parseMemoryLimit(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("must not be empty")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	var bs datasize.ByteSize
	if err := bs.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("parse %q as bytes or human size: %w", s, err)
	}
	return int64(bs.Bytes()), nil
}

// firstNonEmpty returns the first non-empty value, or "" if all are empty.
func firstNonEmpty(values ...string) string {
	result, _ := lo.Coalesce(lo.Filter(values, func(v string, _ int) bool { return v != "" })...)
	return result
}

func hostnameOrUnknown() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
