package tui

import (
	"time"

	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries every result, sorted by the orchestrator.
type ComparisonResultsMsg struct {
	Results []orchestration.CalculationResult
}

// FinalResultMsg carries the fastest successful result and, when it has a
// product, its statistics.
type FinalResultMsg struct {
	Result orchestration.CalculationResult
	Stats  *mpoly.Stats
}

// ErrorMsg reports that no multiplier succeeded.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg drives the periodic sampling.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapInuse    uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a host CPU and memory sample in percent.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// CalculationCompleteMsg ends one run. Generation discards messages from a
// run that was restarted.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context is done.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
