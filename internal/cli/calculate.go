package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/mpolymul/internal/config"
	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/ui"
)

// PrintExecutionConfig shows the job, the timeout, the host and the tuning.
func PrintExecutionConfig(cfg config.AppConfig, job multiplier.Job, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	source := "parsed"
	if cfg.RandomOperands() {
		source = fmt.Sprintf("random (seed %d, exponents < %d, %d-bit coefficients)", cfg.Seed, cfg.ExpBound, cfg.CoeffBits)
	}
	fmt.Fprintf(out, "Multiplying %s%s%s × %s%s%s terms in %d variables (%s, %s operands) with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), format.FormatCount(uint64(job.A.Len)), ui.ColorReset(),
		ui.ColorMagenta(), format.FormatCount(uint64(job.B.Len)), ui.ColorReset(),
		job.Ctx.NVars(), job.Ctx.Ordering(), source,
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fft := "default"
	switch {
	case cfg.FFTThreshold < 0:
		fft = "off"
	case cfg.FFTThreshold > 0:
		fft = fmt.Sprintf("%d bits", cfg.FFTThreshold)
	}
	fmt.Fprintf(out, "Tuning: Threads=%s%d%s, Parallelism=%s%s%s pairs, FFT=%s%s%s.\n",
		ui.ColorCyan(), cfg.Threads, ui.ColorReset(),
		ui.ColorCyan(), format.FormatCount(uint64(cfg.Threshold)), ui.ColorReset(),
		ui.ColorCyan(), fft, ui.ColorReset())
}

// PrintExecutionMode shows whether one algorithm runs or all are compared.
func PrintExecutionMode(multipliers []multiplier.Multiplier, out io.Writer) {
	modeDesc := "Parallel comparison of all algorithms"
	if len(multipliers) == 1 {
		modeDesc = fmt.Sprintf("Single multiplication with the %s%s%s algorithm",
			ui.ColorGreen(), multipliers[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
