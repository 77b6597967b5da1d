package metrics

import "runtime"

// MemorySnapshot is a point-in-time reading of the Go heap.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use
	TotalAlloc   uint64 // cumulative bytes allocated
	Sys          uint64 // bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
	HeapObjects  uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a MemoryCollector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads the current statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
	}
}

// Since returns the allocation and GC activity between before and s.
func (s MemorySnapshot) Since(before MemorySnapshot) MemorySnapshot {
	return MemorySnapshot{
		HeapAlloc:    s.HeapAlloc,
		TotalAlloc:   s.TotalAlloc - before.TotalAlloc,
		Sys:          s.Sys,
		NumGC:        s.NumGC - before.NumGC,
		PauseTotalNs: s.PauseTotalNs - before.PauseTotalNs,
		HeapObjects:  s.HeapObjects,
	}
}
