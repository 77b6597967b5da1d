// Package calibration measures how the threaded multiplier scales on this
// machine and stores the best tuning in a profile.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/agbru/mpolymul/internal/config"
	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/ui"
)

const (
	// FullWorkloadTerms is the operand length of -calibrate.
	FullWorkloadTerms = 2000
	// QuickWorkloadTerms is the operand length of -auto-calibrate.
	QuickWorkloadTerms = 600
	// repetitions keeps the best of this many runs per setting.
	repetitions = 3
)

// Measurement is the best time of one setting.
type Measurement struct {
	Threads   int           `json:"threads"`
	Threshold int           `json:"threshold"`
	Duration  time.Duration `json:"duration"`
	// Speedup is relative to the single-threaded measurement.
	Speedup float64 `json:"speedup"`
	Err     error   `json:"-"`
}

// NewWorkload builds the dense-ish random product used for timing: three
// variables, exponents below 24 and 64-bit coefficients.
func NewWorkload(terms int, seed uint64) (multiplier.Job, error) {
	mctx, err := mpoly.NewContext(3, monomial.DegRevLex, false)
	if err != nil {
		return multiplier.Job{}, err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	a, err := mpoly.Random(rng, mctx, terms, 24, 64)
	if err != nil {
		return multiplier.Job{}, err
	}
	b, err := mpoly.Random(rng, mctx, terms, 24, 64)
	if err != nil {
		return multiplier.Job{}, err
	}
	return multiplier.Job{Ctx: mctx, A: a, B: b}, nil
}

// measure returns the fastest of reps runs.
func measure(ctx context.Context, m multiplier.Multiplier, job multiplier.Job, opts multiplier.Options, reps int) (time.Duration, error) {
	best := time.Duration(0)
	for r := 0; r < reps; r++ {
		start := time.Now()
		if _, err := m.Multiply(ctx, nil, 0, job, opts); err != nil {
			return 0, err
		}
		if d := time.Since(start); best == 0 || d < best {
			best = d
		}
	}
	return best, nil
}

// SweepThreads times m for every thread count with the given threshold.
// A failed setting is recorded and the sweep goes on unless ctx is done.
func SweepThreads(ctx context.Context, m multiplier.Multiplier, job multiplier.Job, counts []int, threshold, reps int, progress func(Measurement)) []Measurement {
	out := make([]Measurement, 0, len(counts))
	for _, t := range counts {
		if ctx.Err() != nil {
			break
		}
		d, err := measure(ctx, m, job, multiplier.Options{Threads: t, ParallelThreshold: threshold}, reps)
		ms := Measurement{Threads: t, Threshold: threshold, Duration: d, Err: err}
		out = append(out, ms)
		if progress != nil {
			progress(ms)
		}
	}
	setSpeedups(out)
	return out
}

// setSpeedups fills Speedup against the single-threaded run, or the first
// successful one when no single-threaded run succeeded.
func setSpeedups(ms []Measurement) {
	var base time.Duration
	for _, m := range ms {
		if m.Err == nil && (m.Threads == 1 || base == 0) {
			base = m.Duration
			if m.Threads == 1 {
				break
			}
		}
	}
	for i := range ms {
		if ms[i].Err == nil && ms[i].Duration > 0 && base > 0 {
			ms[i].Speedup = float64(base) / float64(ms[i].Duration)
		}
	}
}

// Best returns the fastest successful measurement.
func Best(ms []Measurement) (Measurement, bool) {
	var best Measurement
	found := false
	for _, m := range ms {
		if m.Err == nil && (!found || m.Duration < best.Duration) {
			best, found = m, true
		}
	}
	return best, found
}

// sweepThresholds times every threshold at a fixed thread count on a
// product small enough for the threshold to matter.
func sweepThresholds(ctx context.Context, m multiplier.Multiplier, job multiplier.Job, threads int, thresholds []int, reps int) []Measurement {
	var out []Measurement
	for _, th := range thresholds {
		if ctx.Err() != nil {
			break
		}
		d, err := measure(ctx, m, job, multiplier.Options{Threads: threads, ParallelThreshold: th}, reps)
		out = append(out, Measurement{Threads: threads, Threshold: th, Duration: d, Err: err})
	}
	return out
}

// calibrate runs both sweeps and returns the filled profile.
func calibrate(ctx context.Context, m multiplier.Multiplier, terms int, counts, thresholds []int, progress func(Measurement)) (*CalibrationProfile, error) {
	start := time.Now()
	job, err := NewWorkload(terms, 1)
	if err != nil {
		return nil, err
	}
	// the thread sweep always parallelizes; thresholds are tuned afterwards
	ms := SweepThreads(ctx, m, job, counts, 1, repetitions, progress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	best, ok := Best(ms)
	if !ok {
		return nil, fmt.Errorf("calibration: every setting failed: %w", ms[0].Err)
	}

	profile := NewProfile()
	profile.OptimalThreads = best.Threads
	profile.OptimalParallelThreshold = config.EstimateOptimalParallelThreshold()
	if best.Threads > 1 && len(thresholds) > 0 {
		small, err := NewWorkload(128, 2)
		if err != nil {
			return nil, err
		}
		if bt, ok := Best(sweepThresholds(ctx, m, small, best.Threads, thresholds, repetitions)); ok {
			profile.OptimalParallelThreshold = bt.Threshold
		}
	}
	profile.CalibrationTerms = terms
	profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	profile.Measurements = ms
	return profile, nil
}

// RunCalibration runs the full calibration, prints the table, saves the
// profile and optionally writes the chart. It returns an exit code.
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer, factory *multiplier.Factory, colors apperrors.ColorProvider) int {
	m, err := factory.Get(config.DefaultAlgo)
	if err != nil {
		fmt.Fprintf(out, "%sCalibration error: %v%s\n", colors.Red(), err, colors.Reset())
		return apperrors.ExitErrorConfig
	}
	counts := GenerateThreadCounts()
	fmt.Fprintf(out, "--- Calibration Mode ---\n")
	fmt.Fprintf(out, "Timing %s%d × %d%s random terms with %s on 1..%d threads.\n",
		ui.ColorMagenta(), FullWorkloadTerms, FullWorkloadTerms, ui.ColorReset(), m.Name(), counts[len(counts)-1])

	profile, err := calibrate(ctx, m, FullWorkloadTerms, counts, GenerateParallelThresholds(), func(ms Measurement) {
		fmt.Fprintf(out, "  %2d threads: %s\n", ms.Threads, formatMeasurement(ms))
	})
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, out, colors)
	}

	printCalibrationResults(out, profile.Measurements, profile.OptimalThreads)
	fmt.Fprintf(out, "\nOptimal parallel threshold: %s%d%s pairs\n", ui.ColorGreen(), profile.OptimalParallelThreshold, ui.ColorReset())

	path := cfg.CalibrationProfile
	if path == "" {
		path = GetDefaultProfilePath()
	}
	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sWarning: %v%s\n", colors.Yellow(), err, colors.Reset())
	} else {
		fmt.Fprintf(out, "Profile saved to %s%s%s\n", ui.ColorCyan(), path, ui.ColorReset())
	}
	if cfg.ChartFile != "" {
		if err := WriteChart(cfg.ChartFile, profile.Measurements); err != nil {
			fmt.Fprintf(out, "%sWarning: %v%s\n", colors.Yellow(), err, colors.Reset())
		} else {
			fmt.Fprintf(out, "Chart written to %s%s%s\n", ui.ColorCyan(), cfg.ChartFile, ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate runs the quick calibration and fills the tuning fields the
// user left unset. It reports false when calibration failed.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer, factory *multiplier.Factory) (config.AppConfig, bool) {
	m, err := factory.Get(config.DefaultAlgo)
	if err != nil {
		return cfg, false
	}
	profile, err := calibrate(ctx, m, QuickWorkloadTerms, GenerateQuickThreadCounts(), nil, nil)
	if err != nil {
		return cfg, false
	}
	cfg = applyProfile(cfg, profile)
	path := cfg.CalibrationProfile
	if path == "" {
		path = GetDefaultProfilePath()
	}
	// a profile that cannot be saved still tunes this run
	_ = profile.SaveProfile(path)
	if !cfg.Quiet {
		printCalibrationOutput(cfg, out)
	}
	return cfg, true
}

// LoadCachedCalibration applies the profile at path (default path when
// empty) if it is valid and fresh.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	profile, ok := LoadOrCreateProfile(path)
	if !ok {
		return cfg, false
	}
	return applyProfile(cfg, profile), true
}

// applyProfile fills the zero tuning fields of cfg from p.
func applyProfile(cfg config.AppConfig, p *CalibrationProfile) config.AppConfig {
	if cfg.Threads == 0 {
		cfg.Threads = p.OptimalThreads
	}
	if cfg.Threshold == 0 && p.OptimalParallelThreshold > 0 {
		cfg.Threshold = p.OptimalParallelThreshold
	}
	return config.ApplyAdaptiveThresholds(cfg)
}
