package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/mpolymul/internal/config"
	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/ui"
)

func formatMeasurement(m Measurement) string {
	if m.Err != nil {
		return fmt.Sprintf("%sN/A (%v)%s", ui.ColorRed(), m.Err, ui.ColorReset())
	}
	if m.Duration == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(m.Duration)
}

// printCalibrationResults prints the thread sweep table, marking bestThreads.
func printCalibrationResults(out io.Writer, results []Measurement, bestThreads int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sThreads%s      │ %sExecution Time%s     │ %sSpeedup%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 20), strings.Repeat("─", 12))
	for _, res := range results {
		highlight := ""
		if res.Threads == bestThreads && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		speedup := "-"
		if res.Err == nil {
			speedup = fmt.Sprintf("%.2fx", res.Speedup)
		}
		fmt.Fprintf(tw, "  %s%-12d%s │ %s%-18s%s │ %s%s\n",
			ui.ColorCyan(), res.Threads, ui.ColorReset(),
			ui.ColorYellow(), formatMeasurement(res), ui.ColorReset(),
			speedup, highlight)
	}
	tw.Flush()
}

// printCalibrationOutput prints the tuning chosen by auto-calibration.
func printCalibrationOutput(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "%sAuto-calibration%s: threads=%s%d%s, parallelism=%s%d%s pairs\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), cfg.Threads, ui.ColorReset(),
		ui.ColorYellow(), cfg.Threshold, ui.ColorReset())
}
