package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpolymul/internal/ui"
)

// palette is the set of colors the dashboard is drawn with.
type palette struct {
	Accent, Info, Success, Warning, Error, Dim, Border lipgloss.TerminalColor
}

func currentPalette() palette {
	if ui.GetCurrentTheme().Name == ui.NoColorTheme.Name {
		none := lipgloss.NoColor{}
		return palette{none, none, none, none, none, none, none}
	}
	return palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B794F6"},
		Info:    lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"},
		Success: lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Warning: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
		Error:   lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Dim:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Border:  lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
	}
}

// Style variables for the dashboard, rebuilt by initTUIStyles.
var (
	panelStyle         lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	elapsedStyle       lipgloss.Style
	logTimeStyle       lipgloss.Style
	logAlgoStyle       lipgloss.Style
	logSuccessStyle    lipgloss.Style
	logErrorStyle      lipgloss.Style
	metricLabelStyle   lipgloss.Style
	metricValueStyle   lipgloss.Style
	barFilledStyle     lipgloss.Style
	barEmptyStyle      lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
	cpuSparklineStyle  lipgloss.Style
	memSparklineStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme. Run calls it
// again after InitTheme.
func initTUIStyles() {
	p := currentPalette()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	versionStyle = lipgloss.NewStyle().Foreground(p.Dim)
	elapsedStyle = lipgloss.NewStyle().Foreground(p.Accent)

	logTimeStyle = lipgloss.NewStyle().Foreground(p.Dim)
	logAlgoStyle = lipgloss.NewStyle().Foreground(p.Info)
	logSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	logErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	metricLabelStyle = lipgloss.NewStyle().Foreground(p.Dim)
	metricValueStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	barFilledStyle = lipgloss.NewStyle().Foreground(p.Accent)
	barEmptyStyle = lipgloss.NewStyle().Foreground(p.Dim)

	statusRunningStyle = lipgloss.NewStyle().Foreground(p.Success).Bold(true)
	statusPausedStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)
	statusDoneStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	statusErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)

	cpuSparklineStyle = lipgloss.NewStyle().Foreground(p.Accent)
	memSparklineStyle = lipgloss.NewStyle().Foreground(p.Warning)
}
