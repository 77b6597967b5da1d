package config

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/mpolymul/internal/errors"
)

var algos = []string{"classical", "heap", "threaded"}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig("mpolymul", nil, io.Discard, algos)
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgo, cfg.Algo)
	assert.Equal(t, 3, cfg.NVars)
	assert.Equal(t, "lex", cfg.Ordering)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.True(t, cfg.RandomOperands())
	assert.Nil(t, cfg.VarNames())
}

func TestParseConfigFlags(t *testing.T) {
	args := []string{
		"-a", "3*x^2+2*x*y", "-b", "x-y", "-vars", "x, y", "-nvars", "2",
		"-ord", "degrevlex", "-threads", "4", "-threshold", "10",
		"-algo", "all", "-timeout", "30s", "-q", "-calculate", "-o", "out.txt",
	}
	cfg, err := ParseConfig("mpolymul", args, io.Discard, algos)
	require.NoError(t, err)
	assert.False(t, cfg.RandomOperands())
	assert.Equal(t, []string{"x", "y"}, cfg.VarNames())
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 10, cfg.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.ShowValue)
	assert.Equal(t, "out.txt", cfg.OutputFile)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"only one operand", []string{"-a", "x1"}},
		{"bad ordering", []string{"-ord", "revlex"}},
		{"zero variables", []string{"-nvars", "0"}},
		{"names mismatch", []string{"-vars", "x,y", "-nvars", "3"}},
		{"unknown algorithm", []string{"-algo", "karatsuba"}},
		{"negative threads", []string{"-threads", "-1"}},
		{"bad gc mode", []string{"-gc", "sometimes"}},
		{"zero exponent bound", []string{"-exp-bound", "0"}},
		{"stray argument", []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("mpolymul", tt.args, io.Discard, algos)
			require.Error(t, err)
			var cfgErr apperrors.ConfigError
			assert.True(t, errors.As(err, &cfgErr), "got %T", err)
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	_, err := ParseConfig("mpolymul", []string{"-h"}, io.Discard, algos)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"THREADS", "6")
	t.Setenv(EnvPrefix+"ALGO", "heap")
	t.Setenv(EnvPrefix+"VERBOSE", "yes")
	t.Setenv(EnvPrefix+"TIMEOUT", "2m")
	t.Setenv(EnvPrefix+"SEED", "99")
	t.Setenv(EnvPrefix+"THRESHOLD", "not-a-number")

	cfg, err := ParseConfig("mpolymul", []string{"-algo", "classical"}, io.Discard, algos)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Threads)
	assert.Equal(t, "classical", cfg.Algo, "flags win over the environment")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Zero(t, cfg.Threshold, "unparsable values are ignored")
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	assert.True(t, parseBoolEnv("TRUE", false))
	assert.True(t, parseBoolEnv("1", false))
	assert.False(t, parseBoolEnv("no", true))
	assert.True(t, parseBoolEnv("maybe", true))
}

func TestApplyAdaptiveThresholds(t *testing.T) {
	t.Parallel()
	cfg := ApplyAdaptiveThresholds(AppConfig{})
	assert.Positive(t, cfg.Threads)
	assert.Positive(t, cfg.Threshold)
	assert.Zero(t, cfg.FFTThreshold)

	kept := ApplyAdaptiveThresholds(AppConfig{Threads: 3, Threshold: 7})
	assert.Equal(t, 3, kept.Threads)
	assert.Equal(t, 7, kept.Threshold)
}
