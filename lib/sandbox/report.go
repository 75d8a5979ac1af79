package sandbox

import (
	"fmt"
	"os"
)

// Report is the final, stable, line-oriented execution record spec.md §4.6
// and §6 describe.
type Report struct {
	ElapsedMS       int64
	PeakMemoryBytes int64
	ExitCode        int
}

// WriteReport writes Report as three decimal "key value" lines to path,
// creating or truncating it with mode 0644. A blank path is a no-op: when
// Config.Report is unset, no file is created or modified, matching the
// testable property in spec.md §8.
func WriteReport(path string, r Report) error {
	if path == "" {
		return nil
	}
	content := fmt.Sprintf("time %d\nmemory %d\nexit_code %d\n", r.ElapsedMS, r.PeakMemoryBytes, r.ExitCode)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
