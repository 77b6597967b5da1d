package tui

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/mpolymul/internal/config"
	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
)

// milestones are the progress fractions logged per multiplier.
var milestones = []float64{0.25, 0.5, 0.75}

// LogsModel is a scrollable event log.
type LogsModel struct {
	names   []string
	entries []string
	// logged[i] counts the milestones already logged for multiplier i.
	logged   []int
	viewport viewport.Model
}

// NewLogsModel creates an empty log for the given multipliers.
func NewLogsModel(names []string) LogsModel {
	return LogsModel{
		names:    names,
		logged:   make([]int, len(names)),
		viewport: viewport.New(0, 0),
	}
}

// SetSize resizes the viewport inside the panel border.
func (l *LogsModel) SetSize(w, h int) {
	l.viewport.Width = max(w-4, 0)
	l.viewport.Height = max(h-2, 0)
	l.refresh()
}

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.entries = nil
	l.logged = make([]int, len(l.names))
	l.refresh()
}

// Update forwards scrolling keys to the viewport.
func (l *LogsModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *LogsModel) add(line string) {
	stamp := logTimeStyle.Render(time.Now().Format("15:04:05"))
	l.entries = append(l.entries, stamp+" "+line)
	l.refresh()
}

func (l *LogsModel) refresh() {
	follow := l.viewport.AtBottom()
	l.viewport.SetContent(strings.Join(l.entries, "\n"))
	if follow {
		l.viewport.GotoBottom()
	}
}

// AddExecutionConfig logs the job and tuning.
func (l *LogsModel) AddExecutionConfig(cfg config.AppConfig, job multiplier.Job) {
	l.add(fmt.Sprintf("%s × %s terms, %d variables (%s), %s pairs",
		format.FormatCount(uint64(job.A.Len)), format.FormatCount(uint64(job.B.Len)),
		job.Ctx.NVars(), job.Ctx.Ordering(), format.FormatCount(job.Pairs())))
	l.add(fmt.Sprintf("threads=%d threshold=%d GOMAXPROCS=%d timeout=%s",
		cfg.Threads, cfg.Threshold, runtime.GOMAXPROCS(0), cfg.Timeout))
}

// AddProgressEntry logs the milestones a progress message crosses.
func (l *LogsModel) AddProgressEntry(msg ProgressMsg) {
	i := msg.CalculatorIndex
	if i < 0 || i >= len(l.names) {
		return
	}
	for l.logged[i] < len(milestones) && msg.Value >= milestones[l.logged[i]] {
		l.add(fmt.Sprintf("%s %.0f%%", logAlgoStyle.Render(l.names[i]), milestones[l.logged[i]]*100))
		l.logged[i]++
	}
}

// AddResults logs every result.
func (l *LogsModel) AddResults(results []orchestration.CalculationResult) {
	for _, res := range results {
		if res.Err != nil {
			l.add(logErrorStyle.Render(fmt.Sprintf("%s failed: %v", res.Name, res.Err)))
			continue
		}
		l.add(logSuccessStyle.Render(fmt.Sprintf("%s: %s terms in %s",
			res.Name, format.FormatCount(uint64(res.Product.Len)), format.FormatExecutionDuration(res.Duration))))
	}
}

// AddFinalResult logs the fastest result and, when consistent, a status line.
func (l *LogsModel) AddFinalResult(msg FinalResultMsg, consistent bool) {
	if consistent {
		l.add(logSuccessStyle.Render("All valid products are identical."))
	}
	l.add(fmt.Sprintf("Fastest: %s", logAlgoStyle.Render(msg.Result.Name)))
}

// AddError logs a failed run.
func (l *LogsModel) AddError(msg ErrorMsg) {
	l.add(logErrorStyle.Render(fmt.Sprintf("Error: %v", msg.Err)))
}

// AddLine logs a free-form message.
func (l *LogsModel) AddLine(s string) { l.add(s) }

// Len returns the number of entries.
func (l LogsModel) Len() int { return len(l.entries) }

// View renders the log panel.
func (l LogsModel) View() string {
	return panelStyle.
		Width(l.viewport.Width + 2).
		Height(l.viewport.Height).
		Render(l.viewport.View())
}
