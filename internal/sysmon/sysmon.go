// Package sysmon reads host CPU and memory figures for the details report
// and the calibration profile.
package sysmon

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one snapshot of the host.
type Stats struct {
	CPUPercent   float64 // 0.0 .. 100.0
	MemPercent   float64 // 0.0 .. 100.0
	LogicalCPUs  int
	PhysicalCPUs int // 0 when unknown
	TotalMemory  uint64
	FreeMemory   uint64 // available to new allocations
	CPUModel     string
}

// Sample reads a snapshot. CPU load is the delta since the previous call.
// Fields that cannot be read are left at zero.
func Sample(ctx context.Context) Stats {
	s := Stats{LogicalCPUs: runtime.NumCPU()}
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		s.PhysicalCPUs = n
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = vm.UsedPercent
		s.TotalMemory = vm.Total
		s.FreeMemory = vm.Available
	}
	return s
}

// SuggestedThreads caps the thread count at the physical core count when it
// is known, since the kernel's heap merge gains little from hyperthreads.
func (s Stats) SuggestedThreads() int {
	if s.PhysicalCPUs > 0 && s.PhysicalCPUs < s.LogicalCPUs {
		return s.PhysicalCPUs
	}
	return max(s.LogicalCPUs, 1)
}
