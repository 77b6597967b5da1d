package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/orchestration"
)

// AlgoStatus is the state of one multiplier row.
type AlgoStatus int

const (
	StatusRunning AlgoStatus = iota
	StatusComplete
	StatusError
)

// Column widths of the algorithm table.
const (
	colWidthName     = 22
	colWidthProgress = 24
	colWidthPct      = 7
	colWidthDur      = 10
	colWidthStatus   = 5
)

// AlgorithmsModel shows one progress row per multiplier.
type AlgorithmsModel struct {
	names      []string
	progresses []float64
	durations  []time.Duration
	statuses   []AlgoStatus
	average    float64
	eta        time.Duration
	width      int
}

// NewAlgorithmsModel creates rows for the given multiplier names.
func NewAlgorithmsModel(names []string) AlgorithmsModel {
	m := AlgorithmsModel{names: names}
	m.Reset()
	return m
}

// Reset puts every row back to running at 0%.
func (m *AlgorithmsModel) Reset() {
	n := len(m.names)
	m.progresses = make([]float64, n)
	m.durations = make([]time.Duration, n)
	m.statuses = make([]AlgoStatus, n)
	m.average, m.eta = 0, 0
}

// SetWidth updates the available width.
func (m *AlgorithmsModel) SetWidth(w int) { m.width = w }

// UpdateProgress applies one progress message.
func (m *AlgorithmsModel) UpdateProgress(msg ProgressMsg) {
	if msg.CalculatorIndex >= 0 && msg.CalculatorIndex < len(m.progresses) {
		m.progresses[msg.CalculatorIndex] = msg.Value
	}
	m.average, m.eta = msg.AverageProgress, msg.ETA
}

// SetResults marks each row complete or failed from the final results,
// matching rows by multiplier name.
func (m *AlgorithmsModel) SetResults(results []orchestration.CalculationResult) {
	for _, res := range results {
		for i, name := range m.names {
			if name != res.Name {
				continue
			}
			m.durations[i] = res.Duration
			if res.Err != nil {
				m.statuses[i] = StatusError
			} else {
				m.statuses[i] = StatusComplete
				m.progresses[i] = 1
			}
		}
	}
}

// View renders the table.
func (m AlgorithmsModel) View() string {
	var b strings.Builder
	colName := lipgloss.NewStyle().Width(colWidthName)
	colPct := lipgloss.NewStyle().Width(colWidthPct).Align(lipgloss.Right)
	colDur := lipgloss.NewStyle().Width(colWidthDur).Align(lipgloss.Right)
	colStatus := lipgloss.NewStyle().Width(colWidthStatus).Align(lipgloss.Center)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		" ", colName.Render("Algorithm"), " ",
		lipgloss.NewStyle().Width(colWidthProgress).Render("Progress"), " ",
		colPct.Render("%"), " ", colDur.Render("Time"), " ", colStatus.Render("")))

	for i, name := range m.names {
		dur := "..."
		var status string
		switch m.statuses[i] {
		case StatusRunning:
			status = statusRunningStyle.Render("RUN")
		case StatusComplete:
			status = statusDoneStyle.Render("OK")
			dur = format.FormatExecutionDuration(m.durations[i])
		case StatusError:
			status = statusErrorStyle.Render("ERR")
			dur = "-"
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			" ", colName.Render(truncateString(name, colWidthName)), " ",
			renderBar(m.progresses[i], colWidthProgress), " ",
			colPct.Render(fmt.Sprintf("%.1f%%", m.progresses[i]*100)), " ",
			colDur.Render(dur), " ", colStatus.Render(status)))
	}
	if len(m.names) > 1 {
		fmt.Fprintf(&b, "\n %s %s  %s %s",
			metricLabelStyle.Render("Average:"), metricValueStyle.Render(fmt.Sprintf("%.1f%%", m.average*100)),
			metricLabelStyle.Render("ETA:"), metricValueStyle.Render(format.FormatETA(m.eta)))
	}
	return panelStyle.Width(max(m.width-2, 0)).Render(b.String())
}

// truncateString truncates s to maxLen bytes, ending in "..." when cut.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// renderBar renders a progress bar of exactly width cells.
func renderBar(progress float64, width int) string {
	filled := min(max(int(progress*float64(width)), 0), width)
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}
