package memory

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// GCMode controls the garbage collector behavior during a multiplication.
type GCMode string

const (
	GCModeAuto       GCMode = "auto"
	GCModeAggressive GCMode = "aggressive"
	GCModeDisabled   GCMode = "disabled"
)

// GCAutoThreshold is the minimum number of term pairs (len(a)*len(b)) for
// auto GC control to activate.
const GCAutoThreshold uint64 = 4_000_000

// GCController suspends Go's garbage collector while a large product is
// being computed and restores it afterward. The heap kernels allocate one
// big.Int per output term, and collection cycles triggered mid-product only
// rescan that live output.
type GCController struct {
	mode              GCMode
	originalGCPercent int
	active            bool
	logger            zerolog.Logger
	startStats        runtime.MemStats
	endStats          runtime.MemStats
}

// GCStats holds GC statistics for a multiplication.
type GCStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// ParseGCMode validates a -gc flag value.
func ParseGCMode(s string) (GCMode, bool) {
	switch m := GCMode(s); m {
	case GCModeAuto, GCModeAggressive, GCModeDisabled:
		return m, true
	}
	return "", false
}

// NewGCController creates a GC controller for the given mode and workload
// size in term pairs.
func NewGCController(mode string, pairs uint64) *GCController {
	gc := &GCController{mode: GCMode(mode), logger: zerolog.Nop()}
	switch gc.mode {
	case GCModeAggressive:
		gc.active = true
	case GCModeAuto:
		gc.active = pairs >= GCAutoThreshold
	default:
		gc.active = false
	}
	return gc
}

// Active reports whether Begin will suspend the collector.
func (gc *GCController) Active() bool { return gc.active }

// SetLogger configures the logger for GC control events.
func (gc *GCController) SetLogger(l zerolog.Logger) {
	gc.logger = l
}

// Begin disables GC if the controller is active.
func (gc *GCController) Begin() {
	if !gc.active {
		return
	}
	runtime.ReadMemStats(&gc.startStats)
	gc.originalGCPercent = debug.SetGCPercent(-1)
	// soft memory limit as OOM safety net
	if gc.startStats.Sys > 0 {
		limit := int64(float64(gc.startStats.Sys) * 3)
		if limit > 0 {
			debug.SetMemoryLimit(limit)
		}
	}
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.startStats.HeapAlloc).
		Msg("gc disabled")
}

// End restores original GC settings and triggers a collection.
func (gc *GCController) End() {
	if !gc.active {
		return
	}
	runtime.ReadMemStats(&gc.endStats)
	debug.SetGCPercent(gc.originalGCPercent)
	debug.SetMemoryLimit(math.MaxInt64)
	runtime.GC()
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.endStats.HeapAlloc).
		Uint64("total_alloc_bytes", gc.endStats.TotalAlloc-gc.startStats.TotalAlloc).
		Uint32("gc_cycles", gc.endStats.NumGC-gc.startStats.NumGC).
		Msg("gc re-enabled")
}

// Stats returns GC statistics delta between Begin and End.
func (gc *GCController) Stats() GCStats {
	return GCStats{
		HeapAlloc:    gc.endStats.HeapAlloc,
		TotalAlloc:   gc.endStats.TotalAlloc - gc.startStats.TotalAlloc,
		NumGC:        gc.endStats.NumGC - gc.startStats.NumGC,
		PauseTotalNs: gc.endStats.PauseTotalNs - gc.startStats.PauseTotalNs,
	}
}
