package orchestration

import (
	"time"

	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
)

// ProgressAggregator folds the progress of several multipliers into one
// average with an ETA.
type ProgressAggregator struct {
	state          *format.ProgressWithETA
	numCalculators int
}

// NewProgressAggregator returns nil if numCalculators <= 0.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:          format.NewProgressWithETA(numCalculators),
		numCalculators: numCalculators,
	}
}

// AggregatedProgress is the result of folding one update.
type AggregatedProgress struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update records one progress update.
func (a *ProgressAggregator) Update(update multiplier.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.CalculatorIndex, update.Value)
	return AggregatedProgress{
		CalculatorIndex: update.CalculatorIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average without updating.
func (a *ProgressAggregator) CalculateAverage() float64 { return a.state.CalculateAverage() }

// GetETA returns the current ETA without updating.
func (a *ProgressAggregator) GetETA() time.Duration { return a.state.GetETA() }

// NumCalculators returns the number of tracked multipliers.
func (a *ProgressAggregator) NumCalculators() int { return a.numCalculators }

// IsMultiCalculator reports whether more than one multiplier is tracked.
func (a *ProgressAggregator) IsMultiCalculator() bool { return a.numCalculators > 1 }

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan multiplier.ProgressUpdate) {
	for range progressChan {
	}
}
