package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hurricanerix/blueprint/internal/image"
	"github.com/hurricanerix/blueprint/internal/ui"
)

// Rows used by everything except the results viewport.
const chromeHeight = 20

// View draws the screen.
func (m Model) View() string {
	if m.picking {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Choose a drawing"),
			mutedStyle.Render(m.picker.CurrentDirectory),
			"",
			m.picker.View(),
			"",
			mutedStyle.Render("enter select • esc cancel"),
		)
	}

	v := m.ctrl.View()
	if v.Alert != "" {
		return m.alertView(v.Alert)
	}

	sections := []string{
		m.headerView(v),
		m.filesView(v),
		m.promptView(v),
		m.controlsView(v),
		m.resultsView(v),
	}
	if v.Notice != "" {
		sections = append(sections, noticeStyle.Render(v.Notice))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView(v ui.View) string {
	status := toneStyle(v.Status.Tone).Render("● " + v.Status.Label)
	return titleStyle.Render("Blueprint") + "  " + status
}

func (m Model) panel(focused bool) lipgloss.Style {
	s := panelStyle
	if focused {
		s = focusedPanelStyle
	}
	if m.width > 0 {
		s = s.Width(m.width - 2)
	}
	return s
}

func (m Model) filesView(v ui.View) string {
	var chips []string
	for _, c := range v.Chips {
		label := fmt.Sprintf("%s %s ×", c.Name, image.HumanSize(c.Size))
		if m.focus == focusFiles && c.Index == m.chip && m.dropInput.Value() == "" {
			chips = append(chips, selectedChipStyle.Render(label))
		} else {
			chips = append(chips, chipStyle.Render(label))
		}
	}
	line := mutedStyle.Render("No drawings staged")
	if len(chips) > 0 {
		line = strings.Join(chips, " ")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Drawings"),
		line,
		m.dropInput.View(),
	)
	return m.panel(m.focus == focusFiles).Render(body)
}

func (m Model) promptView(v ui.View) string {
	var pills []string
	for i, p := range v.Pills {
		if i >= 9 {
			break
		}
		pills = append(pills, mutedStyle.Render(fmt.Sprintf("%d", i+1))+" "+pillStyle.Render(p.Label))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Prompt"),
		m.prompt.View(),
		mutedStyle.Render("alt+")+strings.Join(pills, "  "),
	)
	return m.panel(m.focus == focusPrompt).Render(body)
}

func (m Model) controlsView(v ui.View) string {
	model := v.Model
	if m.focus == focusModel {
		model = selectedChipStyle.Render("‹ " + model + " ›")
	} else {
		model = chipStyle.Render(model)
	}

	submit := button(v.Submit)
	if v.Submit.Busy {
		submit = m.spinner.View() + " " + submit
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		labelStyle.Render("Model "), model, "   ", submit,
	)
}

func (m Model) resultsView(v ui.View) string {
	if v.EmptyState {
		return m.panel(false).Render(mutedStyle.Render(ui.EmptyStateLabel))
	}

	r := v.Result
	meta := []string{labelStyle.Render(r.Model), mutedStyle.Render(r.Timestamp)}
	if r.RequestID != "" {
		meta = append(meta, mutedStyle.Render("request "+r.RequestID))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		strings.Join(meta, mutedStyle.Render(" • ")), "   ", button(r.Copy),
	)
	return m.panel(false).Render(lipgloss.JoinVertical(lipgloss.Left, header, m.results.View()))
}

// resultContent is the scrollable part of the results panel: one thumbnail
// per returned image, captioned with its name, then the answer.
func (m Model) resultContent() string {
	var b strings.Builder
	for _, t := range m.thumbs {
		if t.Art != "" {
			b.WriteString(t.Art)
			b.WriteString("\n")
		} else {
			b.WriteString(mutedStyle.Render("[no preview]"))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render(caption(t)))
		b.WriteString("\n\n")
	}

	v := m.ctrl.View()
	if v.Result != nil {
		b.WriteString(lipgloss.NewStyle().Width(max(10, m.results.Width)).Render(v.Result.Answer))
	}
	return b.String()
}

func caption(t image.Thumbnail) string {
	if t.Err != nil || t.Info.Format == "" {
		return t.Name
	}
	return fmt.Sprintf("%s · %s %d×%d · %s",
		t.Name, strings.ToUpper(t.Info.Format), t.Info.Width, t.Info.Height, image.HumanSize(t.Size))
}

func (m Model) alertView(text string) string {
	box := alertStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(errRed).Render("Analysis failed"),
		"",
		text,
		"",
		mutedStyle.Render("enter or esc to dismiss"),
	))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
