package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	sandrunotel "github.com/judgebox/sandrun/lib/otel"
)

// Launcher holds the dependencies a single Launch call needs: the
// subsystem loggers the teacher's lib/logger pattern produces, the
// (possibly no-op) OTel provider, and the run ID used to correlate this
// invocation's log lines and spans.
type Launcher struct {
	ParentLog     *slog.Logger
	ChildLog      *slog.Logger
	SupervisorLog *slog.Logger
	ReportLog     *slog.Logger
	Otel          *sandrunotel.Provider
	RunID         string
}

// Launch runs one full sandbox invocation to completion: child clone,
// privileged parent setup, supervised execution, and reporting. It returns
// a launcher error only for configuration/setup failures (spec.md §7);
// runtime limit breaches are recorded in the returned Report, not surfaced
// as an error, since the launcher itself is considered to have supervised
// the run successfully.
func (l *Launcher) Launch(ctx context.Context, cfg *Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("validate config: %w", err)
	}

	ctx, span := l.Otel.TracerFor("sandbox").Start(ctx, "sandbox.launch")
	span.SetAttributes(attribute.String("run_id", l.RunID))
	defer span.End()

	stdin, stdout, stderr, owned, err := openStdio(cfg)
	if err != nil {
		return Report{}, fmt.Errorf("open stdio: %w", err)
	}
	var cleanup teardown
	for _, f := range owned {
		cleanup.add(f)
	}

	initPipe, err := newSyncPipe()
	if err != nil {
		return Report{}, fmt.Errorf("create initialize pipe: %w", err)
	}
	finalPipe, err := newSyncPipe()
	if err != nil {
		return Report{}, fmt.Errorf("create finalize pipe: %w", err)
	}

	cmd, err := buildChildCommand(cfg, initPipe.r, finalPipe.w, stdin, stdout, stderr)
	if err != nil {
		return Report{}, fmt.Errorf("build child command: %w", err)
	}
	cmd.Stderr = os.Stderr

	_, cloneSpan := l.Otel.TracerFor("sandbox").Start(ctx, "sandbox.clone")
	startErr := cmd.Start()
	cloneSpan.End()
	if startErr != nil {
		cleanup.add(initPipe.r)
		cleanup.add(initPipe.w)
		cleanup.add(finalPipe.r)
		cleanup.add(finalPipe.w)
		if closeErr := cleanup.Close(); closeErr != nil {
			l.ParentLog.Warn("cleanup after failed clone", "error", closeErr)
		}
		return Report{}, fmt.Errorf("clone child: %w", startErr)
	}
	pid := cmd.Process.Pid
	l.ParentLog.Info("cloned child", "run_id", l.RunID, "pid", pid)

	// These ends are now duplicated into the child's own fd table; the
	// parent's copies are no longer needed (spec.md §4.7).
	if err := initPipe.CloseReader(); err != nil {
		l.ParentLog.Warn("close initialize pipe reader", "error", err)
	}
	if err := finalPipe.CloseWriter(); err != nil {
		l.ParentLog.Warn("close finalize pipe writer", "error", err)
	}
	if err := cleanup.Close(); err != nil {
		l.ParentLog.Warn("close owned stdio files", "error", err)
	}

	_, setupSpan := l.Otel.TracerFor("sandbox").Start(ctx, "sandbox.parent_setup")
	setupErr := parentSetup(pid, cfg)
	if setupErr != nil {
		setupSpan.SetStatus(codes.Error, setupErr.Error())
		setupSpan.End()
		// Fatal parent setup error: spec.md §7 leaves the child as a
		// zombie until process exit rather than attempting to drive it
		// forward or reap it here.
		return Report{}, fmt.Errorf("parent setup: %w", setupErr)
	}
	setupSpan.End()

	if err := initPipe.SignalDone(); err != nil {
		return Report{}, fmt.Errorf("signal initialize: %w", err)
	}
	l.ParentLog.Debug("released child past initialize barrier", "run_id", l.RunID, "pid", pid)

	_, waitSpan := l.Otel.TracerFor("sandbox").Start(ctx, "sandbox.await_finalize")
	finalizeErr := finalPipe.Wait()
	waitSpan.End()
	if finalizeErr != nil {
		return Report{}, fmt.Errorf("await finalize: %w", finalizeErr)
	}

	startTime := time.Now()
	l.SupervisorLog.Debug("finalize observed, timing started", "run_id", l.RunID, "pid", pid)

	_, superviseSpan := l.Otel.TracerFor("sandbox").Start(ctx, "sandbox.supervise")
	result, err := supervise(l.SupervisorLog, pid, cfg, startTime, func(elapsedMS, peak int64) {
		l.Otel.SetElapsedMS(elapsedMS)
		l.Otel.SetPeakMemoryBytes(peak)
	})
	superviseSpan.End()
	if err != nil {
		return Report{}, fmt.Errorf("supervise: %w", err)
	}

	if err := finalPipe.CloseReader(); err != nil {
		l.ParentLog.Warn("close finalize pipe reader", "error", err)
	}

	report := Report{
		ElapsedMS:       result.ElapsedMS,
		PeakMemoryBytes: result.PeakMemoryBytes,
		ExitCode:        result.ExitCode,
	}
	l.ReportLog.Info("launch complete", "run_id", l.RunID, "pid", pid,
		"elapsed_ms", report.ElapsedMS, "peak_memory_bytes", report.PeakMemoryBytes, "exit_code", report.ExitCode)

	if err := WriteReport(cfg.Report, report); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}

	return report, nil
}

// openStdio opens the configured stdin/stdout/stderr redirections. A path
// left empty means inherit the launcher's own stream; such files are never
// added to owned, so the launcher's real stdio is never closed.
func openStdio(cfg *Config) (stdin, stdout, stderr *os.File, owned []*os.File, err error) {
	stdin, err = openOrInherit(cfg.Stdin, os.Stdin, os.O_RDONLY, &owned)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	stdout, err = openOrInherit(cfg.Stdout, os.Stdout, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, &owned)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	stderr, err = openOrInherit(cfg.Stderr, os.Stderr, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, &owned)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return stdin, stdout, stderr, owned, nil
}

func openOrInherit(path string, inherited *os.File, flag int, owned *[]*os.File) (*os.File, error) {
	if path == "" {
		return inherited, nil
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	*owned = append(*owned, f)
	return f, nil
}
