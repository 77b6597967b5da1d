package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
)

// CalculationResult is the outcome of one multiplier run.
type CalculationResult struct {
	// Name is the display name of the multiplier.
	Name string
	// Product is the computed polynomial, nil on error.
	Product *mpoly.Poly
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the failure, if any.
	Err error
}

// PresentationOptions configures how the final result is shown.
type PresentationOptions struct {
	Verbose   bool
	Details   bool
	ShowValue bool
	// Vars names the variables when the product is printed.
	Vars []string
}

// ProgressReporter displays progress while multipliers run.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed and then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains progress without displaying it.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders results.
type ResultPresenter interface {
	// PresentComparisonTable prints one row per multiplier.
	PresentComparisonTable(results []CalculationResult, out io.Writer)
	// PresentResult prints the retained product.
	PresentResult(result CalculationResult, job multiplier.Job, opts PresentationOptions, out io.Writer)
}

// ErrorHandler maps a failure to an exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
