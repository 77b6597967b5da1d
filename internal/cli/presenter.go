package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/ui"
)

// CLIProgressReporter shows progress with DisplayProgress.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress calls DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numCalculators, out)
}

// CLIColorProvider supplies the current theme's colors to apperrors.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter renders results on the terminal.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentComparisonTable prints one row per multiplier with its duration,
// term count and status. Padding is computed on the uncolored text.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	nameW, durW, termsW := len("Algorithm"), len("Duration"), len("Terms")
	durations := make([]string, len(results))
	terms := make([]string, len(results))
	for i, res := range results {
		nameW = max(nameW, len(res.Name))
		durations[i] = displayDuration(res.Duration)
		durW = max(durW, len(durations[i]))
		terms[i] = "-"
		if res.Err == nil && res.Product != nil {
			terms[i] = format.FormatCount(uint64(res.Product.Len))
		}
		termsW = max(termsW, len(terms[i]))
	}

	fmt.Fprintf(out, "%sAlgorithm%s%s   %sDuration%s%s   %sTerms%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", nameW-9),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", durW-8),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", termsW-5),
		ui.ColorUnderline(), ui.ColorReset())

	for i, res := range results {
		status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), padRight("", nameW-len(res.Name)),
			ui.ColorYellow(), durations[i], ui.ColorReset(), padRight("", durW-len(durations[i])),
			terms[i], padRight("", termsW-len(terms[i])),
			status)
	}
}

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult prints the retained product with DisplayResult.
func (CLIResultPresenter) PresentResult(result orchestration.CalculationResult, job multiplier.Job, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, job, opts, out)
}

// HandleError maps a failure to an exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}
