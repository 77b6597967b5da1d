package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
)

// ProgressBufferMultiplier sizes the progress channel per multiplier so that
// workers rarely wait on a slow display.
const ProgressBufferMultiplier = 16

// ExecuteMultiplications runs every multiplier on job concurrently and
// returns their results in the order of multipliers.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - multipliers: The algorithms to run.
//   - job: The product to compute.
//   - opts: Tuning options passed to every multiplier.
//   - progressReporter: The progress display (NullProgressReporter in quiet mode).
//   - out: The writer for progress output.
//
// Returns:
//   - []CalculationResult: One result per multiplier.
func ExecuteMultiplications(ctx context.Context, multipliers []multiplier.Multiplier, job multiplier.Job, opts multiplier.Options, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(multipliers))
	progressChan := make(chan multiplier.ProgressUpdate, len(multipliers)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(multipliers), out)

	for i, m := range multipliers {
		g.Go(func() error {
			start := time.Now()
			product, err := m.Multiply(ctx, progressChan, i, job, opts)
			if err != nil {
				err = apperrors.CalculationError{Algorithm: m.Name(), Cause: err}
			}
			results[i] = CalculationResult{Name: m.Name(), Product: product, Duration: time.Since(start), Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// AnalyzeComparisonResults sorts results by duration, prints the comparison
// table, checks that every successful product is the same polynomial and
// presents the fastest one.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch, or the code of the first failure
//     when no multiplier succeeded.
func AnalyzeComparisonResults(results []CalculationResult, job multiplier.Job, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var (
		best      *CalculationResult
		firstErr  error
		successes int
	)
	for i := range results {
		if results[i].Err != nil {
			if firstErr == nil {
				firstErr = results[i].Err
			}
			continue
		}
		successes++
		if best == nil {
			best = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if best == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the multiplication.\n")
		return errHandler.HandleError(firstErr, 0, out)
	}
	for _, res := range results {
		if res.Err == nil && !samePoly(job.Ctx, res.Product, best.Product) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The algorithms returned different products.\n")
			return apperrors.ExitErrorMismatch
		}
	}
	// consistency is only meaningful once two products were compared
	if successes > 1 {
		fmt.Fprintf(out, "\nGlobal Status: Success. All valid products are identical.\n")
	}
	presenter.PresentResult(*best, job, opts, out)
	return apperrors.ExitSuccess
}

func samePoly(mctx *mpoly.Context, p, q *mpoly.Poly) bool {
	if p == nil || q == nil {
		return p == q
	}
	return mpoly.Equal(mctx, p, q)
}

// FindBestResult returns the fastest successful result, or nil.
func FindBestResult(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}
