package sandbox

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/judgebox/sandrun/lib/logger"
)

// ChildMain runs inside the freshly cloned process, re-executed with argv[0]
// rewritten to childArg0. It performs spec.md §4.3's eight ordered steps and
// never returns on success — step 8 replaces this process image entirely.
// Any failure is fatal: ChildMain logs a diagnostic to its own stderr and
// calls os.Exit(1), since a setup error here must surface to the parent as
// a non-normal child exit, not as a returned error the parent could somehow
// recover from.
func ChildMain() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("subsystem", logger.SubsystemChild)

	spec, err := readChildSpec()
	if err != nil {
		log.Error("read child spec", "error", err)
		os.Exit(1)
	}

	initReader := os.NewFile(uintptr(fdInitReader), "sandrun-init-reader")
	finalWriter := os.NewFile(uintptr(fdFinalWriter), "sandrun-final-writer")
	stdin := os.NewFile(uintptr(fdStdin), "sandrun-stdin")
	stdout := os.NewFile(uintptr(fdStdout), "sandrun-stdout")
	stderr := os.NewFile(uintptr(fdStderr), "sandrun-stderr")

	if err := runChildSteps(spec, initReader, finalWriter, stdin, stdout, stderr); err != nil {
		log.Error("child setup failed", "error", err)
		os.Exit(1)
	}

	// unreachable: runChildSteps either execve's the payload or exits.
}

func runChildSteps(spec *childSpec, initReader, finalWriter, stdin, stdout, stderr *os.File) error {
	// Step 1: wait for the parent's UID/GID-map-and-cgroup-placement barrier.
	if err := waitPipeEOF(initReader); err != nil {
		return fmt.Errorf("wait for initialize barrier: %w", err)
	}
	initReader.Close()

	// Step 2: unshare the cgroup namespace now that the parent has already
	// placed this process into the host-visible cgroup using the
	// pre-unshare view of /sys/fs/cgroup.
	if err := unix.Unshare(unix.CLONE_NEWCGROUP); err != nil {
		return fmt.Errorf("unshare cgroup namespace: %w", err)
	}

	// Step 3: construct the mount namespace.
	if err := constructMountNamespace(spec); err != nil {
		return fmt.Errorf("construct mount namespace: %w", err)
	}

	// Supplement: bring up loopback now that CLONE_NEWNET is active and the
	// mount namespace no longer needs the host's /sys. Best-effort: a
	// payload that never touches the network should not be failed by this.
	if err := bringUpLoopback(); err != nil {
		fmt.Fprintf(os.Stderr, "sandrun: warning: bring up loopback: %v\n", err)
	}

	// Step 4: set the UTS hostname to the fixed sentinel.
	if err := unix.Sethostname([]byte("sandbox")); err != nil {
		return fmt.Errorf("sethostname: %w", err)
	}

	// Step 5: change to the payload's working directory.
	if err := unix.Chdir(spec.Workdir); err != nil {
		return fmt.Errorf("chdir %s: %w", spec.Workdir, err)
	}

	// Step 6: rewire standard descriptors onto the configured stdio.
	if err := dup2Stdio(stdin, stdout, stderr); err != nil {
		return fmt.Errorf("rewire stdio: %w", err)
	}

	// Step 7: release the parent; timing starts on its side the instant
	// this close reaches it.
	if err := closeWriteEnd(finalWriter); err != nil {
		return fmt.Errorf("signal finalize: %w", err)
	}

	// Step 8: execve the payload. unix.Exec only returns on failure.
	if err := unix.Exec(spec.Args[0], spec.Args, spec.Environ); err != nil {
		return fmt.Errorf("exec %s: %w", spec.Args[0], err)
	}
	return nil
}

// constructMountNamespace implements spec.md §4.3 step 3: detach from host
// mount propagation, bind-mount rootfs over itself, overlay-mount it, build
// the fixed sysfs/proc/dev/... mount table, then pivot into it.
func constructMountNamespace(spec *childSpec) error {
	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("remount / private-recursive: %w", err)
	}

	if err := unix.Mount(spec.Rootfs, spec.Rootfs, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind-mount rootfs onto itself: %w", err)
	}

	overlayData := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s",
		spec.OverlayLowerdir, spec.OverlayUpperdir, spec.OverlayWorkdir)
	if err := unix.Mount("overlay", spec.Rootfs, "overlay", 0, overlayData); err != nil {
		return fmt.Errorf("mount overlay at %s: %w", spec.Rootfs, err)
	}

	if err := applyMounts(spec.Rootfs, mountTable()); err != nil {
		return err
	}

	return pivotRoot(spec.Rootfs)
}

// pivotRoot atomically exchanges the process root with newRoot, then
// detaches the old root, following the open-old-root-fd / chdir-new-root /
// pivot_root(".",".") / fchdir-old-root / slave-remount / detach-unmount /
// chdir-/ sequence used throughout the runc family.
func pivotRoot(newRoot string) error {
	oldRoot, err := os.Open("/")
	if err != nil {
		return fmt.Errorf("open old root: %w", err)
	}
	defer oldRoot.Close()

	if err := unix.Chdir(newRoot); err != nil {
		return fmt.Errorf("chdir %s: %w", newRoot, err)
	}

	if err := unix.PivotRoot(".", "."); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}

	if err := unix.Fchdir(int(oldRoot.Fd())); err != nil {
		return fmt.Errorf("fchdir to old root: %w", err)
	}

	if err := unix.Mount("", ".", "", unix.MS_SLAVE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("remount old root slave-recursive: %w", err)
	}

	if err := unix.Unmount(".", unix.MNT_DETACH); err != nil {
		return fmt.Errorf("detach-unmount old root: %w", err)
	}

	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %w", err)
	}

	return nil
}

// dup2Stdio duplicates the three passed-in files onto fds 0/1/2 and closes
// the originals once duplicated.
func dup2Stdio(stdin, stdout, stderr *os.File) error {
	if err := unix.Dup2(int(stdin.Fd()), 0); err != nil {
		return fmt.Errorf("dup2 stdin: %w", err)
	}
	if err := unix.Dup2(int(stdout.Fd()), 1); err != nil {
		return fmt.Errorf("dup2 stdout: %w", err)
	}
	if err := unix.Dup2(int(stderr.Fd()), 2); err != nil {
		return fmt.Errorf("dup2 stderr: %w", err)
	}
	stdin.Close()
	stdout.Close()
	stderr.Close()
	return nil
}
