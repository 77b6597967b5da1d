package multiplier

import (
	"context"

	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/polymul"
)

// Threaded runs the divided heap multiplication on Options.Threads workers.
type Threaded struct{}

// Name returns the display name.
func (Threaded) Name() string { return "Threaded heap" }

// Multiply computes the product, reporting one step per finished division.
func (Threaded) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, job Job, opts Options) (*mpoly.Poly, error) {
	report := reporter(progressChan, index)
	report(0)
	dst := mpoly.NewPoly(job.Ctx)
	err := polymul.Mul(ctx, dst, job.A, job.B, job.Ctx, polymul.Options{
		Threads:           opts.Threads,
		ParallelThreshold: opts.ParallelThreshold,
		FFTThreshold:      opts.FFTThreshold,
		Logger:            opts.Logger,
		Progress: func(done, total int) {
			if done < total {
				report(float64(done) / float64(total))
			}
		},
	})
	if err != nil {
		return nil, err
	}
	report(1)
	return dst, nil
}

// Heap runs the heap kernel on the calling goroutine.
type Heap struct{}

// Name returns the display name.
func (Heap) Name() string { return "Heap (single thread)" }

// Multiply computes the product.
func (Heap) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, job Job, opts Options) (*mpoly.Poly, error) {
	report := reporter(progressChan, index)
	report(0)
	dst := mpoly.NewPoly(job.Ctx)
	err := polymul.Mul(ctx, dst, job.A, job.B, job.Ctx, polymul.Options{
		Threads:      1,
		FFTThreshold: opts.FFTThreshold,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	report(1)
	return dst, nil
}

// Classical expands every pair of terms and collects like terms. It is the
// reference the other multipliers are checked against.
type Classical struct{}

// Name returns the display name.
func (Classical) Name() string { return "Classical expansion" }

// Multiply computes the product.
func (Classical) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, job Job, _ Options) (*mpoly.Poly, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := reporter(progressChan, index)
	report(0)
	dst := mpoly.NewPoly(job.Ctx)
	if err := mpoly.MulClassical(job.Ctx, dst, job.A, job.B); err != nil {
		return nil, err
	}
	report(1)
	return dst, nil
}
