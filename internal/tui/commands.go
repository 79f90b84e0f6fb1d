package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hurricanerix/blueprint/internal/analyzer"
	"github.com/hurricanerix/blueprint/internal/ui"
)

type (
	pollTickMsg struct{}

	statusMsg struct {
		conn ui.Connectivity
	}

	modelsMsg struct {
		models []string
		err    error
	}

	filesLoadedMsg struct {
		files []analyzer.File
		err   error
	}

	analyzeDoneMsg struct {
		result analyzer.AnalyzeResult
		err    error
	}

	copyExpiredMsg struct {
		seq int
	}
)

// pollTick schedules the next status check. Every tick starts a check and
// the next tick, so a slow check never delays the schedule and checks may
// overlap.
func pollTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func checkStatus(ctx context.Context, ctrl *ui.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return statusMsg{conn: ctrl.CheckStatus(ctx)}
	}
}

func fetchModels(ctx context.Context, ctrl *ui.Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		models, err := ctrl.FetchModels(ctx)
		return modelsMsg{models: models, err: err}
	}
}

func loadFiles(paths []string) tea.Cmd {
	return func() tea.Msg {
		files, err := ui.LoadFiles(paths)
		return filesLoadedMsg{files: files, err: err}
	}
}

func analyze(ctx context.Context, ctrl *ui.Controller, req analyzer.AnalyzeRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Analyze(ctx, req)
		return analyzeDoneMsg{result: res, err: err}
	}
}

func expireCopy(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return copyExpiredMsg{seq: seq} })
}
