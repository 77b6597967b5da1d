// Package multiplier defines the polynomial multiplication algorithms the
// application can run side by side, and the registry that selects them by
// name.
package multiplier

//go:generate mockgen -source=multiplier.go -destination=mocks/mock_multiplier.go -package=mocks

import (
	"context"

	"github.com/agbru/mpolymul/internal/logging"
	"github.com/agbru/mpolymul/internal/mpoly"
)

// ProgressUpdate is a progress report sent by a running multiplier.
type ProgressUpdate struct {
	// CalculatorIndex identifies the multiplier among those running.
	CalculatorIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// Job is a product to compute. A and B belong to Ctx and are not modified.
type Job struct {
	Ctx  *mpoly.Context
	A, B *mpoly.Poly
}

// Pairs returns the number of term pairs of the job.
func (j Job) Pairs() uint64 { return uint64(j.A.Len) * uint64(j.B.Len) }

// Options carries the tuning knobs shared by every multiplier.
type Options struct {
	// Threads is the worker count for parallel multipliers.
	Threads int
	// ParallelThreshold is the pair count below which parallel multipliers
	// run on a single goroutine.
	ParallelThreshold int
	// FFTThreshold is the coefficient size in bits from which coefficient
	// products use FFT multiplication.
	FFTThreshold int
	// Logger receives debug events. Nil discards them.
	Logger logging.Logger
}

// Multiplier computes the product of two sparse polynomials.
type Multiplier interface {
	// Name returns a human readable name of the algorithm.
	Name() string
	// Multiply returns job.A * job.B. Progress is reported on progressChan
	// under index; the channel may be nil.
	Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, job Job, opts Options) (*mpoly.Poly, error)
}

// reporter returns a callback sending progress for index. Intermediate
// values are dropped when the channel is full; completion is always sent.
func reporter(progressChan chan<- ProgressUpdate, index int) func(float64) {
	return func(v float64) {
		if progressChan == nil {
			return
		}
		u := ProgressUpdate{CalculatorIndex: index, Value: v}
		if v >= 1 {
			progressChan <- u
			return
		}
		select {
		case progressChan <- u:
		default:
		}
	}
}
