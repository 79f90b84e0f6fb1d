// Package tui is the terminal front end. It draws the ui.View of a
// ui.Controller with bubbletea and turns keys, pastes and timers into
// controller calls.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hurricanerix/blueprint/internal/image"
	"github.com/hurricanerix/blueprint/internal/logging"
	"github.com/hurricanerix/blueprint/internal/ui"
)

const (
	// DefaultPollInterval is how often the status indicator is refreshed.
	DefaultPollInterval = 10 * time.Second
	// DefaultCopyFeedback is how long the copy control shows ✓.
	DefaultCopyFeedback = 2 * time.Second

	statusTimeout = 5 * time.Second

	thumbMaxCols = 40
	thumbMaxRows = 12
)

// Images the file picker offers.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Options configures the terminal front end.
type Options struct {
	PollInterval time.Duration
	CopyFeedback time.Duration

	// RequestTimeout bounds one analysis. Zero waits until canceled.
	RequestTimeout time.Duration

	// StartDir is where the file picker opens.
	StartDir string

	Logger *logging.Logger
}

type focus int

const (
	focusFiles focus = iota
	focusPrompt
	focusModel
	focusCount
)

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	ctrl   *ui.Controller
	opts   Options
	logger *logging.Logger
	keys   keyMap

	focus     focus
	chip      int
	dropInput textinput.Model
	prompt    textarea.Model
	picker    filepicker.Model
	picking   bool
	spinner   spinner.Model
	results   viewport.Model
	help      help.Model

	thumbs []image.Thumbnail
	cancel context.CancelFunc

	width  int
	height int
}

// New creates the model. ctx bounds every request the model starts.
func New(ctx context.Context, ctrl *ui.Controller, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.CopyFeedback <= 0 {
		opts.CopyFeedback = DefaultCopyFeedback
	}
	if opts.StartDir == "" {
		opts.StartDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	drop := textinput.New()
	drop.Placeholder = "Paste or drop drawings here, or type paths and press enter"
	drop.Prompt = "› "
	drop.Focus()

	ta := textarea.New()
	ta.Placeholder = "What do you want to know about these drawings?"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.SetValue(ctrl.State().Prompt())
	ta.Blur()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = titleStyle

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		opts:      opts,
		logger:    opts.Logger.Named("tui"),
		keys:      defaultKeyMap(),
		focus:     focusFiles,
		dropInput: drop,
		prompt:    ta,
		spinner:   sp,
		results:   viewport.New(80, 10),
		help:      help.New(),
	}
	m.resize(80, 24)
	return m
}

// Init starts the first status check, the model list fetch and the poll
// schedule.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkStatus(m.ctx, m.ctrl, statusTimeout),
		fetchModels(m.ctx, m.ctrl, statusTimeout),
		pollTick(m.opts.PollInterval),
		textinput.Blink,
	)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.picking {
			m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(8, msg.Height-3)})
		}
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(
			checkStatus(m.ctx, m.ctrl, statusTimeout),
			pollTick(m.opts.PollInterval),
		)

	case statusMsg:
		m.ctrl.ApplyStatus(msg.conn)
		return m, nil

	case modelsMsg:
		m.ctrl.ApplyModels(msg.models, msg.err)
		return m, nil

	case filesLoadedMsg:
		m.filesLoaded(msg)
		return m, nil

	case analyzeDoneMsg:
		m.analyzeDone(msg)
		return m, nil

	case copyExpiredMsg:
		m.ctrl.ExpireCopy(msg.seq)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		return m.updatePicker(msg)
	}
	var dropCmd, promptCmd tea.Cmd
	m.dropInput, dropCmd = m.dropInput.Update(msg)
	m.prompt, promptCmd = m.prompt.Update(msg)
	return m, tea.Batch(dropCmd, promptCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}

	// The alert is modal.
	if m.ctrl.State().Alert() != "" {
		if msg.Type == tea.KeyEnter || key.Matches(msg, m.keys.Cancel) {
			m.ctrl.State().DismissAlert()
		}
		return m, nil
	}

	if m.picking {
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.cancel != nil {
			m.logger.Info("Canceling analysis")
			m.cancel()
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Copy):
		return m.copyAnswer()
	case key.Matches(msg, m.keys.Clear):
		m.clear()
		return m, nil
	case key.Matches(msg, m.keys.Browse):
		return m.openPicker()
	case key.Matches(msg, m.keys.NextFocus):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.PrevFocus):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Pill):
		m.applyPill(int(msg.Runes[0] - '1'))
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.focus {
	case focusFiles:
		return m.updateFiles(msg)
	case focusPrompt:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		m.ctrl.State().SetPrompt(m.prompt.Value())
		return m, cmd
	case focusModel:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.ctrl.State().CycleModel(-1)
		case key.Matches(msg, m.keys.Right):
			m.ctrl.State().CycleModel(1)
		}
	}
	return m, nil
}

// updateFiles handles keys while the drop zone has focus. A paste is a
// drop: its paths replace the selection right away.
func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		m.dropInput.Reset()
		return m, m.loadPaths(string(msg.Runes))
	}

	if m.dropInput.Value() == "" {
		n := m.ctrl.State().FileCount()
		switch {
		case key.Matches(msg, m.keys.Left):
			if m.chip > 0 {
				m.chip--
			}
			return m, nil
		case key.Matches(msg, m.keys.Right):
			if m.chip < n-1 {
				m.chip++
			}
			return m, nil
		case key.Matches(msg, m.keys.Remove):
			m.removeChip()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Load) {
		text := m.dropInput.Value()
		m.dropInput.Reset()
		return m, m.loadPaths(text)
	}

	var cmd tea.Cmd
	m.dropInput, cmd = m.dropInput.Update(msg)
	return m, cmd
}

func (m Model) loadPaths(text string) tea.Cmd {
	paths := ui.DroppedPaths(text)
	if len(paths) == 0 {
		return nil
	}
	m.logger.Debug("Loading %d dropped path(s)", len(paths))
	return loadFiles(paths)
}

func (m *Model) removeChip() {
	if err := m.ctrl.State().RemoveFile(m.chip); err != nil {
		m.logger.Debug("Remove ignored: %v", err)
		return
	}
	m.chip = max(0, min(m.chip, m.ctrl.State().FileCount()-1))
}

func (m *Model) filesLoaded(msg filesLoadedMsg) {
	if msg.err != nil {
		m.logger.Warn("Load failed: %v", msg.err)
		m.ctrl.State().SetNotice(msg.err.Error())
		return
	}
	m.ctrl.State().SelectFiles(msg.files)
	m.ctrl.State().SetNotice("")
	m.chip = 0
	m.logger.Info("Staged %d file(s)", len(msg.files))
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.BeginSubmit()
	if err != nil {
		m.logger.Debug("Submit ignored: %v", err)
		return m, nil
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.opts.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.opts.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(m.ctx)
	}
	m.cancel = cancel

	return m, tea.Batch(m.spinner.Tick, analyze(ctx, m.ctrl, req))
}

func (m *Model) analyzeDone(msg analyzeDoneMsg) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.ctrl.FinishSubmit(msg.result, msg.err)
	if msg.err == nil {
		m.refreshResults()
		m.results.GotoTop()
	}
}

func (m Model) copyAnswer() (tea.Model, tea.Cmd) {
	seq, err := m.ctrl.Copy()
	if err != nil {
		return m, nil
	}
	return m, expireCopy(m.opts.CopyFeedback, seq)
}

func (m *Model) clear() {
	m.ctrl.State().Clear()
	m.prompt.Reset()
	m.dropInput.Reset()
	m.chip = 0
}

func (m *Model) applyPill(index int) {
	if err := m.ctrl.State().ApplyPill(index); err != nil {
		m.logger.Debug("Pill ignored: %v", err)
		return
	}
	m.prompt.SetValue(m.ctrl.State().Prompt())
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.dropInput.Blur()
	m.prompt.Blur()
	switch f {
	case focusFiles:
		return m.dropInput.Focus()
	case focusPrompt:
		return m.prompt.Focus()
	}
	return nil
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = imageExtensions
	fp.CurrentDirectory = m.opts.StartDir
	fp.ShowHidden = false
	// The picker sizes itself from window events; seed it with the current size.
	fp, _ = fp.Update(tea.WindowSizeMsg{Width: m.width, Height: max(8, m.height-3)})
	m.picker = fp
	m.picking = true
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Cancel) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, loadFiles([]string{path})
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.ctrl.State().SetNotice(fmt.Sprintf("%s is not a supported image", filepath.Base(path)))
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	inner := max(20, width-4)
	m.dropInput.Width = inner - 2
	m.prompt.SetWidth(inner)
	m.results.Width = inner
	m.results.Height = max(3, height-chromeHeight)

	m.refreshResults()
}

// refreshResults rebuilds the thumbnails and the results viewport content
// for the current result and width.
func (m *Model) refreshResults() {
	res := m.ctrl.View().Result
	if res == nil {
		m.thumbs = nil
		m.results.SetContent("")
		return
	}
	cols := min(thumbMaxCols, max(8, m.results.Width))
	m.thumbs = make([]image.Thumbnail, 0, len(res.Images))
	for _, img := range res.Images {
		t := image.Preview(img.Name, img.Data, cols, thumbMaxRows)
		if t.Err != nil {
			m.logger.Debug("No preview for %s: %v", img.Name, t.Err)
		}
		m.thumbs = append(m.thumbs, t)
	}
	m.results.SetContent(m.resultContent())
}
