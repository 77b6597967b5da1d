// Package config parses the command line and environment of mpolymul into an
// AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/memory"
	"github.com/agbru/mpolymul/internal/monomial"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MPOLYMUL_THREADS.
	EnvPrefix = "MPOLYMUL_"
	// DefaultAlgo is the multiplier used when -algo is not given.
	DefaultAlgo = "threaded"
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 5 * time.Minute
)

// AppConfig holds everything a run needs.
type AppConfig struct {
	// Operands. When A and B are empty, random operands are generated.
	A, B      string
	Vars      string
	NVars     int
	Ordering  string
	Ascending bool
	LenA      int
	LenB      int
	ExpBound  uint64
	CoeffBits int
	Seed      uint64

	// Tuning. Zero values are resolved by the calibration profile or by
	// ApplyAdaptiveThresholds.
	Threads      int
	Threshold    int
	FFTThreshold int

	Algo    string
	Timeout time.Duration
	GCMode  string

	Verbose   bool
	Details   bool
	Quiet     bool
	ShowValue bool
	NoColor   bool

	OutputFile  string
	MetricsFile string
	ChartFile   string

	Calibrate          bool
	AutoCalibrate      bool
	CalibrationProfile string

	TUI        bool
	Completion string
}

// VarNames splits Vars into names, or returns nil when none were given.
func (c AppConfig) VarNames() []string {
	if strings.TrimSpace(c.Vars) == "" {
		return nil
	}
	names := strings.Split(c.Vars, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// RandomOperands reports whether the operands are generated rather than
// parsed.
func (c AppConfig) RandomOperands() bool {
	return c.A == "" && c.B == ""
}

// ParseConfig parses args into an AppConfig, applies MPOLYMUL_ environment
// overrides for flags that were not set, and validates the result.
//
// Parameters:
//   - programName: The name shown in usage output.
//   - args: The arguments without the program name.
//   - errWriter: Where usage and flag errors are written.
//   - availableAlgos: The registered multiplier names.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for -h, or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	fs.StringVar(&cfg.A, "a", "", "First operand, e.g. \"3*x^2+2*x*y\".")
	fs.StringVar(&cfg.B, "b", "", "Second operand.")
	fs.StringVar(&cfg.Vars, "vars", "", "Comma-separated variable names (default x1..xn).")
	fs.IntVar(&cfg.NVars, "nvars", 3, "Number of variables.")
	fs.StringVar(&cfg.Ordering, "ord", "lex", "Monomial ordering: lex, deglex or degrevlex.")
	fs.BoolVar(&cfg.Ascending, "ascending", false, "Store terms in ascending order.")
	fs.IntVar(&cfg.LenA, "len-a", 1000, "Terms of the random first operand.")
	fs.IntVar(&cfg.LenB, "len-b", 1000, "Terms of the random second operand.")
	fs.Uint64Var(&cfg.ExpBound, "exp-bound", 20, "Exclusive bound on random exponents.")
	fs.IntVar(&cfg.CoeffBits, "coeff-bits", 64, "Bit size of random coefficients.")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "Seed of the random operands.")
	fs.IntVar(&cfg.Threads, "threads", 0, "Worker goroutines (0 = adaptive).")
	fs.IntVar(&cfg.Threshold, "threshold", 0, "Term pairs below which a product stays single-threaded (0 = adaptive).")
	fs.IntVar(&cfg.FFTThreshold, "fft-threshold", 0, "Coefficient bits above which products use FFT (0 = default, <0 disables).")
	fs.StringVar(&cfg.Algo, "algo", DefaultAlgo, fmt.Sprintf("Algorithm: all, %s.", strings.Join(availableAlgos, ", ")))
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of the run.")
	fs.StringVar(&cfg.GCMode, "gc", "auto", "GC control during large products: auto, aggressive or disabled.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose output.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (alias for -v).")
	fs.BoolVar(&cfg.Details, "d", false, "Show operand statistics and system details.")
	fs.BoolVar(&cfg.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode: print only the product.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Alias for -q.")
	fs.BoolVar(&cfg.ShowValue, "c", false, "Print the product.")
	fs.BoolVar(&cfg.ShowValue, "calculate", false, "Alias for -c.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colors.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write the product to this file.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Alias for -o.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format.")
	fs.StringVar(&cfg.ChartFile, "chart", "", "Write the calibration chart to this HTML file.")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Measure thread scaling and save a profile.")
	fs.BoolVar(&cfg.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration before multiplying.")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "Calibration profile path.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Show the interactive dashboard.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script: bash, zsh or fish.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errWriter, err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Completion != "" {
		return nil
	}
	if (c.A == "") != (c.B == "") {
		return apperrors.NewConfigError("-a and -b must be given together")
	}
	if c.NVars < 1 {
		return apperrors.NewConfigError("-nvars must be at least 1, got %d", c.NVars)
	}
	if names := c.VarNames(); names != nil && len(names) != c.NVars {
		return apperrors.NewConfigError("-vars names %d variables, -nvars is %d", len(names), c.NVars)
	}
	if _, err := monomial.ParseOrdering(c.Ordering); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.RandomOperands() {
		if c.LenA < 0 || c.LenB < 0 {
			return apperrors.NewConfigError("operand lengths must be non-negative")
		}
		if c.ExpBound < 1 {
			return apperrors.NewConfigError("-exp-bound must be at least 1")
		}
		if c.CoeffBits < 1 {
			return apperrors.NewConfigError("-coeff-bits must be at least 1")
		}
	}
	if c.Threads < 0 {
		return apperrors.NewConfigError("-threads must be non-negative, got %d", c.Threads)
	}
	if c.Threshold < 0 {
		return apperrors.NewConfigError("-threshold must be non-negative, got %d", c.Threshold)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("-timeout must be positive")
	}
	if _, ok := memory.ParseGCMode(c.GCMode); !ok {
		return apperrors.NewConfigError("unknown -gc mode %q (auto, aggressive, disabled)", c.GCMode)
	}
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q (available: all, %s)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	return nil
}
