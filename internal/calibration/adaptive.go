package calibration

import (
	"runtime"
	"slices"
)

// GenerateThreadCounts returns the thread counts a full calibration
// measures: powers of two up to the CPU count, plus the CPU count itself.
func GenerateThreadCounts() []int {
	return threadCounts(runtime.NumCPU())
}

func threadCounts(numCPU int) []int {
	counts := []int{1}
	for t := 2; t < numCPU; t *= 2 {
		counts = append(counts, t)
	}
	if numCPU > 1 {
		counts = append(counts, numCPU)
	}
	return counts
}

// GenerateQuickThreadCounts returns at most three thread counts for the
// startup calibration.
func GenerateQuickThreadCounts() []int {
	return quickThreadCounts(runtime.NumCPU())
}

func quickThreadCounts(numCPU int) []int {
	counts := []int{1, max(numCPU/2, 1), max(numCPU, 1)}
	return slices.Compact(counts)
}

// GenerateParallelThresholds returns the pair thresholds tried once the
// thread count is fixed. Small products pay for planning and goroutine
// start-up, so the range grows with the core count.
func GenerateParallelThresholds() []int {
	return parallelThresholds(runtime.NumCPU())
}

func parallelThresholds(numCPU int) []int {
	switch {
	case numCPU == 1:
		return nil
	case numCPU <= 4:
		return []int{2048, 4096, 8192, 16384}
	case numCPU <= 16:
		return []int{1024, 2048, 4096, 8192, 16384}
	default:
		return []int{512, 1024, 2048, 4096, 8192}
	}
}
