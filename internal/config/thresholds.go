package config

import "runtime"

// Tuning resolution chain (highest priority first):
//   1. CLI flags (-threads, -threshold)
//   2. Environment variables (MPOLYMUL_THREADS, ...)
//   3. Cached calibration profile (~/.mpolymul_calibration.json)
//   4. Adaptive hardware estimation (this file)

// ApplyAdaptiveThresholds fills the tuning fields still at zero from the
// hardware. FFTThreshold is left alone: zero already selects the kernel
// default.
func ApplyAdaptiveThresholds(cfg AppConfig) AppConfig {
	if cfg.Threads == 0 {
		cfg.Threads = EstimateOptimalThreads()
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = EstimateOptimalParallelThreshold()
	}
	return cfg
}

// EstimateOptimalThreads uses every logical CPU up to 64.
func EstimateOptimalThreads() int {
	return min(runtime.NumCPU(), 64)
}

// EstimateOptimalParallelThreshold returns the term-pair count below which
// starting workers costs more than it saves.
func EstimateOptimalParallelThreshold() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU <= 2:
		return 16384
	case numCPU <= 4:
		return 8192
	case numCPU <= 8:
		return 4096
	case numCPU <= 16:
		return 2048
	default:
		return 1024
	}
}
