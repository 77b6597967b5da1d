package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/mpolymul/internal/config"
	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	initTUIStyles()
	os.Exit(m.Run())
}

func testJob(t *testing.T) (multiplier.Job, *mpoly.Poly) {
	t.Helper()
	vars := []string{"x", "y"}
	mctx, err := mpoly.NewContext(2, monomial.Lex, false)
	if err != nil {
		t.Fatal(err)
	}
	a, err := mpoly.Parse(mctx, "x+y", vars)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mpoly.Parse(mctx, "x-y", vars)
	if err != nil {
		t.Fatal(err)
	}
	p := mpoly.NewPoly(mctx)
	if err := mpoly.MulClassical(mctx, p, a, b); err != nil {
		t.Fatal(err)
	}
	return multiplier.Job{Ctx: mctx, A: a, B: b}, p
}

func newTestModel(t *testing.T) (Model, *mpoly.Poly) {
	t.Helper()
	job, product := testJob(t)
	ms := []multiplier.Multiplier{multiplier.Threaded{}, multiplier.Heap{}}
	m := NewModel(context.Background(), ms, job, config.AppConfig{Threads: 2, Threshold: 1, Timeout: time.Minute}, "v1.0.0")
	t.Cleanup(m.cancel)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), product
}

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()
	bindings := map[string]key.Binding{
		"Quit": km.Quit, "Pause": km.Pause, "Reset": km.Reset,
		"Up": km.Up, "Down": km.Down, "PageUp": km.PageUp, "PageDown": km.PageDown,
	}
	for name, b := range bindings {
		if !b.Enabled() || len(b.Keys()) == 0 {
			t.Errorf("expected %s binding to be enabled with keys", name)
		}
	}
	if len(km.ShortHelp()) == 0 {
		t.Error("expected short help bindings")
	}
}

func TestModel_ProgressAndResults(t *testing.T) {
	m, product := newTestModel(t)

	updated, _ := m.Update(ProgressMsg{CalculatorIndex: 0, Value: 0.6, AverageProgress: 0.3, ETA: time.Second})
	m = updated.(Model)
	if got := m.algorithms.progresses[0]; got != 0.6 {
		t.Errorf("expected progress 0.6, got %f", got)
	}
	// 25% and 50% milestones
	if got := m.logs.Len(); got != 4 {
		t.Errorf("expected 4 log entries, got %d", got)
	}

	results := []orchestration.CalculationResult{
		{Name: "Threaded heap", Product: product, Duration: 2 * time.Millisecond},
		{Name: "Heap (single thread)", Err: errors.New("boom")},
	}
	updated, _ = m.Update(ComparisonResultsMsg{Results: results})
	m = updated.(Model)
	if m.algorithms.statuses[0] != StatusComplete || m.algorithms.statuses[1] != StatusError {
		t.Errorf("unexpected statuses %v", m.algorithms.statuses)
	}

	updated, _ = m.Update(finalResult(results[0], m.job))
	m = updated.(Model)
	if m.metrics.product == nil || m.metrics.product.Terms != 2 {
		t.Fatalf("expected product stats with 2 terms, got %+v", m.metrics.product)
	}
	if strings.Contains(strings.Join(m.logs.entries, "\n"), "identical") {
		t.Error("a single successful product must not be reported as consistent")
	}

	updated, _ = m.Update(CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess, Generation: m.generation})
	m = updated.(Model)
	if !m.done || m.ExitCode() != apperrors.ExitSuccess {
		t.Error("expected the run to be done")
	}

	view := m.View()
	for _, want := range []string{"mpolymul monitor v1.0.0", "Threaded heap", "ERR", "DONE", "Terms"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestModel_StaleGenerationIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.generation = 3
	updated, cmd := m.Update(ContextCancelledMsg{Err: context.Canceled, Generation: 2})
	m = updated.(Model)
	if m.done || cmd != nil {
		t.Error("a stale cancellation must not end the session")
	}
	updated, _ = m.Update(CalculationCompleteMsg{ExitCode: 1, Generation: 2})
	if updated.(Model).done {
		t.Error("a stale completion must not end the session")
	}
}

func TestModel_PauseAndReset(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = updated.(Model)
	if !m.paused {
		t.Fatal("expected paused")
	}
	updated, _ = m.Update(ProgressMsg{CalculatorIndex: 0, Value: 0.9})
	m = updated.(Model)
	if m.algorithms.progresses[0] != 0 {
		t.Error("progress must be ignored while paused")
	}

	gen := m.generation
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	if m.generation != gen+1 || m.paused || cmd == nil {
		t.Error("expected a restarted, unpaused run")
	}
}

func TestModel_ErrorAndMismatch(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(ErrorMsg{Err: errors.New("nothing worked")})
	m = updated.(Model)
	if !m.footer.failed {
		t.Error("expected the footer in error state")
	}
	updated, _ = m.Update(CalculationCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: m.generation})
	m = updated.(Model)
	if m.ExitCode() != apperrors.ExitErrorMismatch {
		t.Errorf("expected exit code %d, got %d", apperrors.ExitErrorMismatch, m.ExitCode())
	}
	if !strings.Contains(strings.Join(m.logs.entries, "\n"), "different products") {
		t.Error("expected the mismatch to be logged")
	}
}

func TestModel_ViewBeforeSize(t *testing.T) {
	job, _ := testJob(t)
	m := NewModel(context.Background(), nil, job, config.AppConfig{}, "dev")
	defer m.cancel()
	if m.View() != "Initializing..." {
		t.Error("expected placeholder before the first WindowSizeMsg")
	}
}

func TestBridge_DisplayProgressDrainsChannel(t *testing.T) {
	job, _ := testJob(t)
	reporter := newBridge(&programRef{}, job)
	for _, n := range []int{0, 1, 2} {
		ch := make(chan multiplier.ProgressUpdate, 4)
		ch <- multiplier.ProgressUpdate{CalculatorIndex: 0, Value: 0.5}
		ch <- multiplier.ProgressUpdate{CalculatorIndex: 0, Value: 1}
		close(ch)
		var wg sync.WaitGroup
		wg.Add(1)
		go reporter.DisplayProgress(&wg, ch, n, nil)
		wg.Wait()
		if len(ch) != 0 {
			t.Errorf("expected drained channel with %d calculators", n)
		}
	}
}

func TestBridge_HandleError(t *testing.T) {
	job, _ := testJob(t)
	presenter := newBridge(&programRef{}, job)
	tests := []struct {
		err  error
		want int
	}{
		{nil, apperrors.ExitSuccess},
		{context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{context.Canceled, apperrors.ExitErrorCanceled},
		{errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		if got := presenter.HandleError(tt.err, time.Second, nil); got != tt.want {
			t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFinalResult_Stats(t *testing.T) {
	job, product := testJob(t)
	msg := finalResult(orchestration.CalculationResult{Name: "Heap (single thread)", Product: product}, job)
	if msg.Stats == nil || msg.Stats.Terms != 2 {
		t.Fatalf("expected statistics for a 2-term product, got %+v", msg.Stats)
	}
	if finalResult(orchestration.CalculationResult{Err: errors.New("boom")}, job).Stats != nil {
		t.Error("a failed result has no statistics")
	}
}

func TestProgramRef_Send_Concurrent(t *testing.T) {
	ref := &programRef{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref.Send(ProgressMsg{Value: float64(i) / 50})
		}(i)
	}
	wg.Wait()
}

func TestMetricsModel_UpdateProgress(t *testing.T) {
	m := NewMetricsModel()
	m.lastUpdate = time.Now().Add(-time.Second)
	m.UpdateProgress(0.5)
	if m.speed <= 0 || m.lastProgress != 0.5 {
		t.Errorf("expected positive speed and lastProgress 0.5, got %f %f", m.speed, m.lastProgress)
	}
	// too soon: ignored
	m.UpdateProgress(0.9)
	if m.lastProgress != 0.5 {
		t.Error("expected rapid update to be ignored")
	}
}

func TestMetricsModel_View(t *testing.T) {
	m := NewMetricsModel()
	m.SetSize(60, 10)
	m.UpdateMemStats(MemStatsMsg{Alloc: 3 << 20, HeapInuse: 4 << 20, NumGC: 7, NumGoroutine: 9})
	m.UpdateSysStats(SysStatsMsg{CPUPercent: 50, MemPercent: 25})
	view := m.View()
	for _, want := range []string{"Heap:", "3.0 MiB", "Goroutines:", "9", "50%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestRingBuffer(t *testing.T) {
	r := NewRingBuffer(3)
	if r.Last() != 0 || r.Slice() != nil {
		t.Error("expected empty buffer")
	}
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	got := r.Slice()
	if r.Len() != 3 || got[0] != 2 || got[2] != 4 || r.Last() != 4 {
		t.Errorf("unexpected contents %v", got)
	}
	r.Reset()
	if r.Len() != 0 {
		t.Error("expected empty buffer after reset")
	}
	if NewRingBuffer(0).data == nil {
		t.Error("expected minimum capacity of 1")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{-5, 0, 50, 100, 200}); got != "▁▁▄██" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("expected empty sparkline")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("Threaded heap", 8); got != "Threa..." {
		t.Errorf("truncateString = %q", got)
	}
	if got := truncateString("abc", 2); got != "ab" {
		t.Errorf("truncateString = %q", got)
	}
}
