package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
)

// progressInterval is the minimum delay between two progress messages of
// the same multiplier. A threaded run reports once per division, which can
// outpace the redraw rate.
const progressInterval = 50 * time.Millisecond

// programRef survives the model copies made by bubbletea so the bridge
// can reach the program from the orchestration goroutines.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send delivers msg to the program. It is a no-op until SetProgram.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// bridge turns orchestration callbacks into program messages. It stands in
// for the CLI progress reporter, result presenter and error handler.
type bridge struct {
	ref      *programRef
	job      multiplier.Job
	interval time.Duration
}

var (
	_ orchestration.ProgressReporter = (*bridge)(nil)
	_ orchestration.ResultPresenter  = (*bridge)(nil)
	_ orchestration.ErrorHandler     = (*bridge)(nil)
)

func newBridge(ref *programRef, job multiplier.Job) *bridge {
	return &bridge{ref: ref, job: job, interval: progressInterval}
}

// DisplayProgress forwards aggregated progress, throttled per multiplier.
// The first and the final update of every multiplier always go through.
func (b *bridge) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan multiplier.ProgressUpdate, numCalculators int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	sent := make([]time.Time, numCalculators)
	for update := range progressChan {
		ap := agg.Update(update)
		if i := update.CalculatorIndex; i >= 0 && i < len(sent) && update.Value < 1 {
			now := time.Now()
			if now.Sub(sent[i]) < b.interval {
				continue
			}
			sent[i] = now
		}
		b.ref.Send(ProgressMsg{
			CalculatorIndex: ap.CalculatorIndex,
			Value:           ap.Value,
			AverageProgress: ap.AverageProgress,
			ETA:             ap.ETA,
		})
	}
	b.ref.Send(ProgressDoneMsg{})
}

func (b *bridge) PresentComparisonTable(results []orchestration.CalculationResult, _ io.Writer) {
	b.ref.Send(ComparisonResultsMsg{Results: results})
}

// PresentResult sends the retained result together with its statistics,
// computed here so that Update never walks the product.
func (b *bridge) PresentResult(result orchestration.CalculationResult, _ multiplier.Job, _ orchestration.PresentationOptions, _ io.Writer) {
	b.ref.Send(finalResult(result, b.job))
}

func finalResult(result orchestration.CalculationResult, job multiplier.Job) FinalResultMsg {
	msg := FinalResultMsg{Result: result}
	if result.Product != nil {
		st := result.Product.Stats(job.Ctx)
		msg.Stats = &st
	}
	return msg
}

// HandleError reports err to the program and returns its exit code.
func (b *bridge) HandleError(err error, duration time.Duration, _ io.Writer) int {
	if err != nil {
		b.ref.Send(ErrorMsg{Err: err, Duration: duration})
	}
	return apperrors.HandleCalculationError(err, duration, io.Discard, noColors{})
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }
