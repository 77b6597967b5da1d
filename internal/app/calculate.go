package app

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/mpolymul/internal/cli"
	"github.com/agbru/mpolymul/internal/config"
	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/logging"
	"github.com/agbru/mpolymul/internal/memory"
	"github.com/agbru/mpolymul/internal/metrics"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/polymul"
)

// lifecycle bounds ctx by the run timeout and by SIGINT/SIGTERM.
func lifecycle(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// BuildJob parses -a and -b, or generates random operands from the seed
// when neither is given.
func BuildJob(cfg config.AppConfig) (multiplier.Job, error) {
	ord, err := monomial.ParseOrdering(cfg.Ordering)
	if err != nil {
		return multiplier.Job{}, apperrors.NewConfigError("%v", err)
	}
	mctx, err := mpoly.NewContext(cfg.NVars, ord, cfg.Ascending)
	if err != nil {
		return multiplier.Job{}, apperrors.NewConfigError("%v", err)
	}

	if cfg.RandomOperands() {
		rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
		a, err := mpoly.Random(rng, mctx, cfg.LenA, cfg.ExpBound, cfg.CoeffBits)
		if err != nil {
			return multiplier.Job{}, err
		}
		b, err := mpoly.Random(rng, mctx, cfg.LenB, cfg.ExpBound, cfg.CoeffBits)
		if err != nil {
			return multiplier.Job{}, err
		}
		return multiplier.Job{Ctx: mctx, A: a, B: b}, nil
	}

	vars := cfg.VarNames()
	a, err := mpoly.Parse(mctx, cfg.A, vars)
	if err != nil {
		return multiplier.Job{}, fmt.Errorf("operand a: %w", err)
	}
	b, err := mpoly.Parse(mctx, cfg.B, vars)
	if err != nil {
		return multiplier.Job{}, fmt.Errorf("operand b: %w", err)
	}
	return multiplier.Job{Ctx: mctx, A: a, B: b}, nil
}

// runCalculate orchestrates the execution of the CLI multiplication command.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	job, err := BuildJob(a.Config)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, cancel := lifecycle(ctx, a.Config.Timeout)
	defer cancel()

	multipliersToRun := orchestration.GetMultipliersToRun(a.Config.Algo, a.Factory)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, job, out)
		cli.PrintExecutionMode(multipliersToRun, out)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	opts := multiplier.Options{
		Threads:           a.Config.Threads,
		ParallelThreshold: a.Config.Threshold,
		FFTThreshold:      a.Config.FFTThreshold,
		Logger:            logging.Nop(),
	}
	if a.Config.Verbose {
		opts.Logger = logging.NewLogger(a.ErrWriter, "polymul")
	}

	gc := memory.NewGCController(a.Config.GCMode, job.Pairs())
	gc.SetLogger(zerolog.New(a.ErrWriter).With().Timestamp().Str("component", "gc").Logger())
	mem := metrics.NewMemoryCollector()
	before := mem.Snapshot()

	gc.Begin()
	results := orchestration.ExecuteMultiplications(ctx, multipliersToRun, job, opts, progressReporter, progressOut)
	gc.End()

	if a.Config.MetricsFile != "" {
		a.writeMetrics(job, opts, results, mem.Snapshot().Since(before))
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		ShowValue:  a.Config.ShowValue,
		Details:    a.Config.Details,
		Vars:       a.Config.VarNames(),
	}
	return a.analyzeResultsWithOutput(results, job, outputCfg, out)
}

// writeMetrics records the run and writes the textfile. Failures are only
// reported: the product is already computed.
func (a *Application) writeMetrics(job multiplier.Job, opts multiplier.Options, results []orchestration.CalculationResult, mem metrics.MemorySnapshot) {
	rec := metrics.NewRecorder()
	divisions := polymul.PlannedDivisions(job.A, job.B, polymul.Options{
		Threads:           opts.Threads,
		ParallelThreshold: opts.ParallelThreshold,
	})
	rec.SetJob(job.A.Len, job.B.Len, opts.Threads, divisions)
	for _, res := range results {
		terms := 0
		if res.Product != nil {
			terms = res.Product.Len
		}
		rec.ObserveMultiplication(res.Name, terms, res.Duration, res.Err)
	}
	rec.ObserveMemory(mem)
	if err := rec.WriteTextfile(a.Config.MetricsFile); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
	}
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, job multiplier.Job, outputCfg cli.OutputConfig, out io.Writer) int {
	best := orchestration.FindBestResult(results)

	if outputCfg.Quiet {
		if best == nil {
			return cli.CLIResultPresenter{}.HandleError(firstError(results), 0, a.ErrWriter)
		}
		if err := cli.DisplayResultWithConfig(out, best.Product, job, best.Duration, best.Name, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving product: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	presOpts := orchestration.PresentationOptions{
		Verbose:   a.Config.Verbose,
		Details:   a.Config.Details,
		ShowValue: a.Config.ShowValue,
		Vars:      outputCfg.Vars,
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, job, presOpts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)

	if best != nil && exitCode == apperrors.ExitSuccess {
		if err := cli.DisplayResultWithConfig(out, best.Product, job, best.Duration, best.Name, outputCfg); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving product: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}
	return exitCode
}

func firstError(results []orchestration.CalculationResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}
