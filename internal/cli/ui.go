package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/ui"
)

const (
	// TruncationLimit is the length in characters above which a printed
	// product is truncated unless -v is given.
	TruncationLimit = 400
	// DisplayEdges is the number of characters kept at each end of a
	// truncated product.
	DisplayEdges = 120
	// ProgressRefreshRate is the spinner frame interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in cells of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so that DisplayProgress can be
// tested without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text shown after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with the averaged progress of every
// running multiplier until progressChan is closed, then calls wg.Done.
//
// Parameters:
//   - wg: Signalled when the display has stopped.
//   - progressChan: The updates sent by the multipliers.
//   - numCalculators: The number of multipliers reporting.
//   - out: The terminal writer.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	label := "Multiplying"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Multiplying with %d algorithms", agg.NumCalculators())
	}
	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" " + label + " " + format.FormatProgressBarWithETA(0, 0, ProgressBarWidth))
	s.Start()

	for update := range progressChan {
		p := agg.Update(update)
		s.UpdateSuffix(" " + label + " " + format.FormatProgressBarWithETA(p.AverageProgress, p.ETA, ProgressBarWidth))
	}
	s.Stop()
	fmt.Fprintf(out, "%s%s %s%s\n", ui.ColorGreen(), label, format.FormatProgressBarWithETA(agg.CalculateAverage(), 0, ProgressBarWidth), ui.ColorReset())
}
