package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hurricanerix/blueprint/internal/ui"
)

var (
	accent  = lipgloss.Color("#7D56F4")
	muted   = lipgloss.Color("#6C7086")
	okColor = lipgloss.Color("#A6E3A1")
	errRed  = lipgloss.Color("#F38BA8")
	warn    = lipgloss.Color("#F9E2AF")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	labelStyle = lipgloss.NewStyle().Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(accent)

	chipStyle         = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#313244"))
	selectedChipStyle = chipStyle.Background(accent).Foreground(lipgloss.Color("#FFFFFF"))

	pillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent)
	disabledButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(muted).
				Background(lipgloss.Color("#313244"))

	noticeStyle = lipgloss.NewStyle().Foreground(warn)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(errRed).
			Padding(1, 2).
			Width(60)
)

func toneStyle(t ui.Tone) lipgloss.Style {
	switch t {
	case ui.ToneOK:
		return lipgloss.NewStyle().Foreground(okColor)
	case ui.ToneError:
		return lipgloss.NewStyle().Foreground(errRed)
	default:
		return mutedStyle
	}
}

func button(b ui.ButtonView) string {
	if b.Enabled {
		return buttonStyle.Render(b.Label)
	}
	return disabledButtonStyle.Render(b.Label)
}
