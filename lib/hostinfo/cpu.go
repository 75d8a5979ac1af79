package hostinfo

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TotalLogicalCPUs reads /proc/cpuinfo to determine the number of logical
// CPUs on the host. Used only for the informational log line sandrun emits
// at startup; no CPU controller is configured (spec.md §1 Non-goals).
func TotalLogicalCPUs() (int, error) {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0, fmt.Errorf("open /proc/cpuinfo: %w", err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "processor") {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 1, nil
	}
	return count, nil
}
