package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/mpoly"
)

// sparklineSamples is the history kept for the CPU and memory sparklines.
const sparklineSamples = 40

// MetricsModel displays runtime memory, host load and, once known, the
// product statistics.
type MetricsModel struct {
	alloc        uint64
	heapInuse    uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int

	// speed is progress per second, smoothed.
	speed        float64
	lastProgress float64
	lastUpdate   time.Time

	cpuHistory *RingBuffer
	memHistory *RingBuffer

	product *mpoly.Stats
	rate    float64 // product terms per second

	width  int
	height int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		lastUpdate: time.Now(),
		cpuHistory: NewRingBuffer(sparklineSamples),
		memHistory: NewRingBuffer(sparklineSamples),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapInuse = msg.HeapInuse
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateSysStats appends a host sample to the sparklines.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpuHistory.Push(msg.CPUPercent)
	m.memHistory.Push(msg.MemPercent)
}

// UpdateProgress updates the speed metric with an exponential moving
// average. Updates closer than 50ms are ignored.
func (m *MetricsModel) UpdateProgress(progress float64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt <= 0.05 {
		return
	}
	if dp := progress - m.lastProgress; dp > 0 {
		instant := dp / dt
		if m.speed > 0 {
			m.speed = 0.7*m.speed + 0.3*instant
		} else {
			m.speed = instant
		}
	}
	m.lastProgress = progress
	m.lastUpdate = now
}

// SetProduct records the statistics of the final product.
func (m *MetricsModel) SetProduct(s mpoly.Stats, d time.Duration) {
	m.product = &s
	if d > 0 {
		m.rate = float64(s.Terms) / d.Seconds()
	}
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder

	pipe := metricLabelStyle.Render(" | ")
	fmt.Fprintf(&rows, "  %s %s%s%s %s",
		metricLabelStyle.Render("Heap:"),
		metricValueStyle.Render(format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapInuse)),
		pipe,
		metricLabelStyle.Render("GC:"),
		metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6)))

	colWidth := max((m.width-6)/2, 0)
	speed := "-"
	if m.speed > 0 {
		speed = fmt.Sprintf("%.1f%%/s", m.speed*100)
	}
	left := []string{
		formatMetricCol("Speed:", speed, colWidth),
		formatMetricCol("CPU:", cpuSparklineStyle.Render(RenderSparkline(m.cpuHistory.Slice()))+
			fmt.Sprintf(" %.0f%%", m.cpuHistory.Last()), colWidth),
	}
	right := []string{
		formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth),
		formatMetricCol("Mem:", memSparklineStyle.Render(RenderSparkline(m.memHistory.Slice()))+
			fmt.Sprintf(" %.0f%%", m.memHistory.Last()), colWidth),
	}
	if m.product != nil {
		left = append(left,
			formatMetricCol("Terms:", format.FormatCount(uint64(m.product.Terms)), colWidth),
			formatMetricCol("Coeff bits:", fmt.Sprintf("%d", m.product.MaxCoeffBits), colWidth),
		)
		right = append(right,
			formatMetricCol("Degree:", fmt.Sprintf("%d", m.product.TotalDegree), colWidth),
			formatMetricCol("Terms/s:", format.FormatCount(uint64(m.rate)), colWidth),
		)
	}
	for i := range left {
		rows.WriteString("\n")
		rows.WriteString(left[i])
		rows.WriteString(right[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
