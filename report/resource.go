package report

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is the running process's resident set size and CPU
// percent, grounded on monitoring/monitor.go:472-493.
type ResourceUsage struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

// CurrentResourceUsage samples the current process's CPU and memory
// usage via gopsutil.
func CurrentResourceUsage() (ResourceUsage, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("report: opening process handle: %w", err)
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("report: reading CPU percent: %w", err)
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("report: reading memory info: %w", err)
	}

	return ResourceUsage{CPUPercent: cpuPercent, MemoryRSS: mem.RSS}, nil
}
