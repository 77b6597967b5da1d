// Package tui is the interactive dashboard of mpolymul: live progress of
// every multiplier, an event log, and runtime and host metrics.
package tui

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpolymul/internal/config"
	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight          = 1
	footerHeight          = 1
	minBodyHeight         = 6
	LogsPanelWidthPercent = 55
	MetricsPanelHeight    = 8
)

// tickInterval is the sampling period of the metrics panel.
const tickInterval = 500 * time.Millisecond

// ExecutionState holds the execution-related fields of a session.
type ExecutionState struct {
	ctx         context.Context
	cancel      context.CancelFunc
	multipliers []multiplier.Multiplier
	generation  uint64
	successes   int
	done        bool
	exitCode    int
}

// LayoutManager holds terminal dimensions and derives the panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) logsWidth() int {
	return l.width * LogsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.logsWidth()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header     HeaderModel
	algorithms AlgorithmsModel
	logs       LogsModel
	metrics    MetricsModel
	footer     FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	config    config.AppConfig
	job       multiplier.Job
	ref       *programRef
	paused    bool
}

// NewModel creates a dashboard that runs multipliers on job.
func NewModel(parentCtx context.Context, multipliers []multiplier.Multiplier, job multiplier.Job, cfg config.AppConfig, version string) Model {
	names := make([]string, len(multipliers))
	for i, m := range multipliers {
		names[i] = m.Name()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	logs := NewLogsModel(names)
	logs.AddExecutionConfig(cfg, job)

	keymap := DefaultKeyMap()
	shape := fmt.Sprintf("%s × %s terms", format.FormatCount(uint64(job.A.Len)), format.FormatCount(uint64(job.B.Len)))
	return Model{
		header:     NewHeaderModel(version, shape),
		algorithms: NewAlgorithmsModel(names),
		logs:       logs,
		metrics:    NewMetricsModel(),
		footer:     NewFooterModel(keymap),
		keymap:     keymap,
		ExecutionState: ExecutionState{
			ctx:         ctx,
			cancel:      cancel,
			multipliers: multipliers,
			exitCode:    apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		config:    cfg,
		job:       job,
		ref:       &programRef{},
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startCalculationCmd(m.ref, m.ctx, m.multipliers, m.job, m.config, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if !m.paused {
			m.algorithms.UpdateProgress(msg)
			m.logs.AddProgressEntry(msg)
			m.metrics.UpdateProgress(msg.AverageProgress)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case ComparisonResultsMsg:
		m.successes = 0
		for _, res := range msg.Results {
			if res.Err == nil {
				m.successes++
			}
		}
		m.algorithms.SetResults(msg.Results)
		m.logs.AddResults(msg.Results)
		return m, nil

	case FinalResultMsg:
		m.logs.AddFinalResult(msg, m.successes > 1)
		if msg.Stats != nil {
			m.metrics.SetProduct(*msg.Stats, msg.Result.Duration)
		}
		return m, nil

	case ErrorMsg:
		m.logs.AddError(msg)
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.ctx), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.metrics.UpdateSysStats(msg)
		return m, nil

	case CalculationCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.footer.SetDone(true)
		if msg.ExitCode == apperrors.ExitErrorMismatch {
			m.logs.AddLine(logErrorStyle.Render("CRITICAL: the algorithms returned different products."))
			m.footer.SetError(true)
		}
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		if m.cancel != nil {
			m.cancel()
		}
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)

		m.header.Reset()
		m.algorithms.Reset()
		m.logs.Reset()
		m.logs.AddExecutionConfig(m.config, m.job)
		m.metrics = NewMetricsModel()
		m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.done = false
		m.successes = 0
		m.paused = false
		m.exitCode = apperrors.ExitSuccess

		return m, tea.Batch(
			tickCmd(),
			startCalculationCmd(m.ref, m.ctx, m.multipliers, m.job, m.config, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		return m, m.logs.Update(msg)
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	left := lipgloss.JoinVertical(lipgloss.Left, m.algorithms.View(), m.logs.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, m.metrics.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.algorithms.SetWidth(m.logsWidth())
	algoHeight := lipgloss.Height(m.algorithms.View())
	m.logs.SetSize(m.logsWidth(), max(m.bodyHeight()-algoHeight, 3))
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
}

// ExitCode returns the exit code of the last finished run.
func (m Model) ExitCode() int { return m.exitCode }

// Run is the public entry point for the TUI mode. It runs the dashboard
// until the user quits or ctx ends and returns the exit code.
func Run(ctx context.Context, multipliers []multiplier.Multiplier, job multiplier.Job, cfg config.AppConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, multipliers, job, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startCalculationCmd returns a tea.Cmd that runs the orchestration.
func startCalculationCmd(ref *programRef, ctx context.Context, multipliers []multiplier.Multiplier, job multiplier.Job, cfg config.AppConfig, gen uint64) tea.Cmd {
	return func() tea.Msg {
		b := newBridge(ref, job)
		opts := multiplier.Options{
			Threads:           cfg.Threads,
			ParallelThreshold: cfg.Threshold,
			FFTThreshold:      cfg.FFTThreshold,
		}
		results := orchestration.ExecuteMultiplications(ctx, multipliers, job, opts, b, io.Discard)
		exitCode := orchestration.AnalyzeComparisonResults(results, job, orchestration.PresentationOptions{}, b, b, io.Discard)
		return CalculationCompleteMsg{ExitCode: exitCode, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			Alloc:        ms.Alloc,
			HeapInuse:    ms.HeapInuse,
			NumGC:        ms.NumGC,
			PauseTotalNs: ms.PauseTotalNs,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample(ctx)
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for ctx to end. A restart cancels the previous
// context, whose stale message is then ignored by generation.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
