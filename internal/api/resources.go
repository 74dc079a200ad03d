package api

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceSnapshot is a point-in-time view of the host the warmer runs
// on, served on /resources.
type ResourceSnapshot struct {
	CPUCount          int       `json:"cpu_count"`
	CPUPercent        float64   `json:"cpu_percent"`
	MemoryTotal       uint64    `json:"memory_total"`
	MemoryAvailable   uint64    `json:"memory_available"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	Timestamp         time.Time `json:"timestamp"`
}

// TakeSnapshot collects current host CPU and memory figures.
func TakeSnapshot() (*ResourceSnapshot, error) {
	count, err := cpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU count: %w", err)
	}

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	var cpuPercent float64
	if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}

	return &ResourceSnapshot{
		CPUCount:          count,
		CPUPercent:        cpuPercent,
		MemoryTotal:       vm.Total,
		MemoryAvailable:   vm.Available,
		MemoryUsedPercent: vm.UsedPercent,
		Timestamp:         time.Now(),
	}, nil
}
