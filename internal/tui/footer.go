package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the run state and the key hints.
type FooterModel struct {
	help   help.Model
	keys   KeyMap
	paused bool
	done   bool
	failed bool
	width  int
}

// NewFooterModel creates a footer for keys.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{help: help.New(), keys: keys}
}

func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = w
}

func (f *FooterModel) SetPaused(p bool) { f.paused = p }
func (f *FooterModel) SetDone(d bool)   { f.done = d }
func (f *FooterModel) SetError(e bool)  { f.failed = e }

func (f FooterModel) status() string {
	switch {
	case f.failed:
		return statusErrorStyle.Render("ERROR")
	case f.done:
		return statusDoneStyle.Render("DONE")
	case f.paused:
		return statusPausedStyle.Render("PAUSED")
	}
	return statusRunningStyle.Render("RUNNING")
}

// View renders the footer.
func (f FooterModel) View() string {
	row := " " + f.status() + "  " + f.help.ShortHelpView(f.keys.ShortHelp())
	return lipgloss.NewStyle().MaxWidth(max(f.width, 1)).Render(row)
}
