// Package ui is the client UI controller for the drawing analyzer.
//
// State holds everything the interface shows: staged files, prompt,
// model choice, service connectivity, the busy flag and the last result.
// It is mutated only through its methods, from a single event loop.
// Render turns a State into a View, a plain description of the screen
// that front ends draw and tests inspect.
package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hurricanerix/blueprint/internal/analyzer"
)

var (
	// ErrIndexOutOfRange is returned when removing a file at a stale position
	ErrIndexOutOfRange = errors.New("file index out of range")
	// ErrCannotSubmit is returned when no file is staged or the prompt is blank
	ErrCannotSubmit = errors.New("select at least one image and enter a prompt")
	// ErrBusy is returned when an analysis is already in flight
	ErrBusy = errors.New("analysis already in progress")
	// ErrUnknownModel is returned when selecting a model that is not offered
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownPill is returned for a pill index that does not exist
	ErrUnknownPill = errors.New("unknown prompt preset")
)

// Connectivity is the analysis service state shown by the indicator.
type Connectivity int

const (
	// ConnChecking is shown until the first status check completes
	ConnChecking Connectivity = iota
	// ConnReady means the service answered {"status":"ready"}
	ConnReady
	// ConnDisconnected means the service answered with any other body
	ConnDisconnected
	// ConnError means the status request failed or returned garbage
	ConnError
)

// String returns the indicator label
func (c Connectivity) String() string {
	switch c {
	case ConnChecking:
		return "Checking…"
	case ConnReady:
		return "Ready"
	case ConnDisconnected:
		return "Disconnected"
	case ConnError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ConnectivityFrom maps a status check outcome to a Connectivity.
func ConnectivityFrom(resp analyzer.StatusResponse, err error) Connectivity {
	switch {
	case err != nil:
		return ConnError
	case resp.Ready():
		return ConnReady
	default:
		return ConnDisconnected
	}
}

// Pill is a preset that fills the prompt with canned text.
type Pill struct {
	Label  string
	Prompt string
}

// DefaultPills are the prompt presets offered next to the prompt field.
var DefaultPills = []Pill{
	{Label: "Summarize", Prompt: "Summarize what this drawing shows, including the part or assembly name."},
	{Label: "Dimensions", Prompt: "List all dimensions and tolerances shown on this drawing."},
	{Label: "Materials", Prompt: "What materials, finishes and treatments are specified?"},
	{Label: "Title block", Prompt: "Read the title block: part number, revision, scale and drawn-by."},
	{Label: "Compare", Prompt: "Compare these drawings and list every difference you can find."},
}

// Result is the last successful analysis.
type Result struct {
	Images     []analyzer.ImagePreview
	Model      string
	Answer     string
	RequestID  string
	ReceivedAt time.Time
}

// State is the client-side UI state.
type State struct {
	selection Selection
	prompt    string
	model     string
	models    []string
	pills     []Pill

	status Connectivity
	busy   bool
	result *Result

	alert  string
	notice string

	copyConfirmed bool
	copySeq       int
}

// NewState creates a State offering models, with model selected when it is
// in the list and the first entry otherwise. A nil models list uses
// analyzer.DefaultModels and nil pills use DefaultPills.
func NewState(models []string, model string, pills []Pill) *State {
	if len(models) == 0 {
		models = analyzer.DefaultModels
	}
	if pills == nil {
		pills = DefaultPills
	}
	s := &State{
		models: slices.Clone(models),
		pills:  slices.Clone(pills),
		status: ConnChecking,
	}
	s.model = s.models[0]
	if slices.Contains(s.models, model) {
		s.model = model
	}
	return s
}

// SelectFiles replaces the staged files.
func (s *State) SelectFiles(files []analyzer.File) {
	s.selection.Replace(files)
}

// RemoveFile removes the staged file at index.
func (s *State) RemoveFile(index int) error {
	return s.selection.Remove(index)
}

// Files returns the staged files.
func (s *State) Files() []analyzer.File {
	return s.selection.Files()
}

// FileCount returns the number of staged files.
func (s *State) FileCount() int {
	return s.selection.Len()
}

// SetPrompt replaces the prompt text.
func (s *State) SetPrompt(prompt string) {
	s.prompt = prompt
}

// Prompt returns the prompt text as typed.
func (s *State) Prompt() string {
	return s.prompt
}

// Pills returns the prompt presets.
func (s *State) Pills() []Pill {
	return s.pills
}

// ApplyPill replaces the prompt with the preset at index.
func (s *State) ApplyPill(index int) error {
	if index < 0 || index >= len(s.pills) {
		return fmt.Errorf("%w: %d", ErrUnknownPill, index)
	}
	s.prompt = s.pills[index].Prompt
	return nil
}

// Model returns the selected model.
func (s *State) Model() string {
	return s.model
}

// Models returns the models offered by the selector.
func (s *State) Models() []string {
	return s.models
}

// SetModel selects name, which must be one of Models.
func (s *State) SetModel(name string) error {
	if !slices.Contains(s.models, name) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	s.model = name
	return nil
}

// CycleModel moves the selection delta entries through Models, wrapping.
func (s *State) CycleModel(delta int) {
	i := slices.Index(s.models, s.model)
	n := len(s.models)
	s.model = s.models[((i+delta)%n+n)%n]
}

// SetModels replaces the selector options. The current choice survives
// when still offered; otherwise the first option is selected. An empty
// list is ignored.
func (s *State) SetModels(models []string) {
	if len(models) == 0 {
		return
	}
	s.models = slices.Clone(models)
	if !slices.Contains(s.models, s.model) {
		s.model = s.models[0]
	}
}

// Clear empties the staged files and the prompt.
func (s *State) Clear() {
	s.selection.Clear()
	s.prompt = ""
}

// CanSubmit reports whether submit is enabled: at least one file staged,
// a prompt that is not blank, and nothing in flight.
func (s *State) CanSubmit() bool {
	return !s.busy && s.selection.Len() > 0 && strings.TrimSpace(s.prompt) != ""
}

// Busy reports whether an analysis is in flight.
func (s *State) Busy() bool {
	return s.busy
}

// BeginSubmit enters the busy state and returns the request to send.
// Selection and prompt are left as they are.
func (s *State) BeginSubmit() (analyzer.AnalyzeRequest, error) {
	if s.busy {
		return analyzer.AnalyzeRequest{}, ErrBusy
	}
	if !s.CanSubmit() {
		return analyzer.AnalyzeRequest{}, ErrCannotSubmit
	}
	s.busy = true
	s.alert = ""
	s.notice = ""
	return analyzer.AnalyzeRequest{
		Files:  s.selection.Files(),
		Prompt: strings.TrimSpace(s.prompt),
		Model:  s.model,
	}, nil
}

// FinishSubmit leaves the busy state. On success the result replaces the
// previous one; on failure the alert is set. A canceled request only
// leaves a notice.
func (s *State) FinishSubmit(res analyzer.AnalyzeResult, err error, at time.Time) {
	s.busy = false
	switch {
	case errors.Is(err, context.Canceled):
		s.notice = "Analysis canceled"
	case err != nil:
		s.alert = AlertText(err)
	default:
		s.result = &Result{
			Images:     res.Images,
			Model:      res.Model,
			Answer:     res.Result,
			RequestID:  res.RequestID,
			ReceivedAt: at,
		}
		s.copyConfirmed = false
	}
}

// Result returns the last successful result, or nil.
func (s *State) Result() *Result {
	return s.result
}

// Status returns the connectivity shown by the indicator.
func (s *State) Status() Connectivity {
	return s.status
}

// SetStatus records the outcome of a status check.
func (s *State) SetStatus(c Connectivity) {
	s.status = c
}

// Alert returns the pending alert text, or "".
func (s *State) Alert() string {
	return s.alert
}

// DismissAlert clears the pending alert.
func (s *State) DismissAlert() {
	s.alert = ""
}

// Notice returns the transient status line message, or "".
func (s *State) Notice() string {
	return s.notice
}

// SetNotice replaces the transient status line message.
func (s *State) SetNotice(msg string) {
	s.notice = msg
}

// ConfirmCopy shows the copy confirmation and returns its sequence
// number. Only ExpireCopy with the latest number reverts it, so a second
// copy restarts the confirmation window.
func (s *State) ConfirmCopy() int {
	s.copySeq++
	s.copyConfirmed = true
	return s.copySeq
}

// ExpireCopy reverts the copy confirmation if seq is the latest one and
// reports whether it did.
func (s *State) ExpireCopy(seq int) bool {
	if seq != s.copySeq || !s.copyConfirmed {
		return false
	}
	s.copyConfirmed = false
	return true
}

// CopyConfirmed reports whether the copy control shows the confirmation.
func (s *State) CopyConfirmed() bool {
	return s.copyConfirmed
}

// AlertText is the message shown when an analysis fails.
func AlertText(err error) string {
	return fmt.Sprintf("Error: %s\n\nMake sure the analysis service is running and Ollama is started: ollama serve",
		PlainText(analyzer.Message(err)))
}
