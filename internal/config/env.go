package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet reports whether a flag was given on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny is isFlagSet for aliased flags.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps one environment key (without EnvPrefix) to the flags it
// stands in for.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(key, flagName string, field func(*AppConfig) *int) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*field(c) = parsed
		}
	}}
}

func uint64Override(key, flagName string, field func(*AppConfig) *uint64) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			*field(c) = parsed
		}
	}}
}

func boolOverride(key string, flags []string, field func(*AppConfig) *bool) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		p := field(c)
		*p = parseBoolEnv(v, *p)
	}}
}

func stringOverride(key string, flags []string, field func(*AppConfig) *string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = v
	}}
}

// envOverrides lists every MPOLYMUL_ variable.
var envOverrides = []envOverride{
	// Operands
	stringOverride("A", []string{"a"}, func(c *AppConfig) *string { return &c.A }),
	stringOverride("B", []string{"b"}, func(c *AppConfig) *string { return &c.B }),
	stringOverride("VARS", []string{"vars"}, func(c *AppConfig) *string { return &c.Vars }),
	stringOverride("ORD", []string{"ord"}, func(c *AppConfig) *string { return &c.Ordering }),
	intOverride("NVARS", "nvars", func(c *AppConfig) *int { return &c.NVars }),
	intOverride("LEN_A", "len-a", func(c *AppConfig) *int { return &c.LenA }),
	intOverride("LEN_B", "len-b", func(c *AppConfig) *int { return &c.LenB }),
	uint64Override("EXP_BOUND", "exp-bound", func(c *AppConfig) *uint64 { return &c.ExpBound }),
	intOverride("COEFF_BITS", "coeff-bits", func(c *AppConfig) *int { return &c.CoeffBits }),
	uint64Override("SEED", "seed", func(c *AppConfig) *uint64 { return &c.Seed }),
	boolOverride("ASCENDING", []string{"ascending"}, func(c *AppConfig) *bool { return &c.Ascending }),

	// Tuning
	intOverride("THREADS", "threads", func(c *AppConfig) *int { return &c.Threads }),
	intOverride("THRESHOLD", "threshold", func(c *AppConfig) *int { return &c.Threshold }),
	intOverride("FFT_THRESHOLD", "fft-threshold", func(c *AppConfig) *int { return &c.FFTThreshold }),
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},
	stringOverride("ALGO", []string{"algo"}, func(c *AppConfig) *string { return &c.Algo }),
	stringOverride("GC", []string{"gc"}, func(c *AppConfig) *string { return &c.GCMode }),

	// Output
	stringOverride("OUTPUT", []string{"output", "o"}, func(c *AppConfig) *string { return &c.OutputFile }),
	stringOverride("METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig) *string { return &c.MetricsFile }),
	stringOverride("CHART", []string{"chart"}, func(c *AppConfig) *string { return &c.ChartFile }),
	stringOverride("CALIBRATION_PROFILE", []string{"calibration-profile"}, func(c *AppConfig) *string { return &c.CalibrationProfile }),
	boolOverride("VERBOSE", []string{"v", "verbose"}, func(c *AppConfig) *bool { return &c.Verbose }),
	boolOverride("DETAILS", []string{"d", "details"}, func(c *AppConfig) *bool { return &c.Details }),
	boolOverride("QUIET", []string{"q", "quiet"}, func(c *AppConfig) *bool { return &c.Quiet }),
	boolOverride("CALCULATE", []string{"c", "calculate"}, func(c *AppConfig) *bool { return &c.ShowValue }),
	boolOverride("TUI", []string{"tui"}, func(c *AppConfig) *bool { return &c.TUI }),
	boolOverride("NO_COLOR", []string{"no-color"}, func(c *AppConfig) *bool { return &c.NoColor }),
	boolOverride("CALIBRATE", []string{"calibrate"}, func(c *AppConfig) *bool { return &c.Calibrate }),
	boolOverride("AUTO_CALIBRATE", []string{"auto-calibrate"}, func(c *AppConfig) *bool { return &c.AutoCalibrate }),
}

// parseBoolEnv accepts true/1/yes and false/0/no in any case and returns
// defaultVal for anything else.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies MPOLYMUL_ variables for every flag not given on
// the command line, so that flags win over the environment and the
// environment wins over defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
