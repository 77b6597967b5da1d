// Package app wires configuration, calibration and the multipliers into the
// mpolymul command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/mpolymul/internal/calibration"
	"github.com/agbru/mpolymul/internal/cli"
	"github.com/agbru/mpolymul/internal/config"
	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/tui"
	"github.com/agbru/mpolymul/internal/ui"
)

// Application represents the mpolymul application instance.
type Application struct {
	Config    config.AppConfig
	Factory   *multiplier.Factory
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom multiplier Factory for the application.
func WithFactory(f *multiplier.Factory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// New creates a new Application instance by parsing command-line arguments.
//
// Parameters:
//   - args: The full argument vector, program name first.
//   - errWriter: Where usage and configuration errors are written.
//   - opts: Optional overrides such as WithFactory.
//
// Returns:
//   - *Application: The configured application.
//   - error: flag.ErrHelp when help was requested, or a configuration error.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = multiplier.NewDefaultFactory()
	}

	programName := "mpolymul"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		return nil, err
	}

	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = cfgWithProfile
	} else {
		cfg = config.ApplyAdaptiveThresholds(cfg)
	}

	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if a.Config.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	ui.InitTheme(a.Config.NoColor)

	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)

	if a.Config.TUI {
		return a.runTUI(ctx)
	}

	return a.runCalculate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancel := lifecycle(ctx, a.Config.Timeout)
	defer cancel()
	return calibration.RunCalibration(ctx, a.Config, out, a.Factory, cli.CLIColorProvider{})
}

// runAutoCalibrationIfEnabled runs auto-calibration if enabled.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if a.Config.AutoCalibrate {
		if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out, a.Factory); ok {
			return updated
		}
	}
	return a.Config
}

// runTUI launches the interactive dashboard.
func (a *Application) runTUI(ctx context.Context) int {
	job, err := BuildJob(a.Config)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	ctx, cancel := lifecycle(ctx, a.Config.Timeout)
	defer cancel()

	multipliersToRun := orchestration.GetMultipliersToRun(a.Config.Algo, a.Factory)
	return tui.Run(ctx, multipliersToRun, job, a.Config, Version)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
