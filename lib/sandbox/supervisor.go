package sandbox

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/judgebox/sandrun/lib/cgroup"
)

// supervisorResult is the outcome the reporter turns into a Report.
type supervisorResult struct {
	ExitCode        int
	ElapsedMS       int64
	PeakMemoryBytes int64
}

// sampleFunc is invoked once per poll tick with the running elapsed/peak
// values, letting the launcher feed OTel gauges without supervise itself
// depending on the otel package.
type sampleFunc func(elapsedMS, peakMemoryBytes int64)

// supervise implements spec.md §4.5: a non-blocking reap loop that samples
// elapsed wall-clock time and memory.current every 5ms, killing the child
// once either limit is strictly exceeded, until the child is reaped.
func supervise(log *slog.Logger, pid int, cfg *Config, startTime time.Time, onSample sampleFunc) (*supervisorResult, error) {
	var (
		status       unix.WaitStatus
		peak         int64
		killedTime   bool
		killedMemory bool
	)

	for {
		wpid, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("wait4: %w", err)
		}
		reaped := wpid == pid

		elapsedMS := time.Since(startTime).Milliseconds()

		if !reaped && !killedTime && time.Since(startTime) > cfg.TimeLimit {
			if err := killTolerant(pid); err != nil {
				return nil, fmt.Errorf("kill on time breach: %w", err)
			}
			killedTime = true
		}

		if current, err := cgroup.ReadMemoryCurrent(cfg.CgroupPath); err != nil {
			log.Warn("read memory.current", "error", err)
		} else if current > peak {
			peak = current
			if peak > cfg.MemoryLimit && !killedMemory {
				if err := killTolerant(pid); err != nil {
					return nil, fmt.Errorf("kill on memory breach: %w", err)
				}
				killedMemory = true
			}
		}

		if onSample != nil {
			onSample(elapsedMS, peak)
		}

		if reaped {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if current, err := cgroup.ReadMemoryCurrent(cfg.CgroupPath); err != nil {
		log.Warn("final memory.current sample", "error", err)
	} else if current > peak {
		peak = current
	}

	elapsedMS := time.Since(startTime).Milliseconds()

	exitCode := -1
	if status.Exited() {
		exitCode = status.ExitStatus()
	}

	if onSample != nil {
		onSample(elapsedMS, peak)
	}

	return &supervisorResult{
		ExitCode:        exitCode,
		ElapsedMS:       elapsedMS,
		PeakMemoryBytes: peak,
	}, nil
}

// killTolerant sends SIGKILL, tolerating ESRCH for a child that has already
// exited — idempotent-kill is a law, not just an edge case (spec.md §8).
func killTolerant(pid int) error {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}
