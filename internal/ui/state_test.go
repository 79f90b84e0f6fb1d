package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurricanerix/blueprint/internal/analyzer"
)

func files(names ...string) []analyzer.File {
	out := make([]analyzer.File, len(names))
	for i, n := range names {
		out[i] = analyzer.File{Name: n, Data: []byte(n)}
	}
	return out
}

func TestCanSubmit(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		for _, prompt := range []string{"", "  ", "describe"} {
			t.Run(fmt.Sprintf("%d files/%q", n, prompt), func(t *testing.T) {
				s := NewState(nil, "", nil)
				s.SelectFiles(files("a.png", "b.png")[:n])
				s.SetPrompt(prompt)

				want := n >= 1 && prompt == "describe"
				assert.Equal(t, want, s.CanSubmit())
				assert.Equal(t, want, Render(s).Submit.Enabled)
			})
		}
	}
}

func TestCanSubmit_FalseWhileBusy(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("a.png"))
	s.SetPrompt("describe")

	_, err := s.BeginSubmit()
	require.NoError(t, err)
	assert.False(t, s.CanSubmit())

	_, err = s.BeginSubmit()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSelectFiles_Replaces(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("A", "B"))
	s.SelectFiles(files("C"))

	assert.Equal(t, []string{"C"}, s.selection.Names())
}

func TestSelectFiles_CopiesInput(t *testing.T) {
	in := files("A", "B")
	s := NewState(nil, "", nil)
	s.SelectFiles(in)
	in[0].Name = "changed"

	assert.Equal(t, []string{"A", "B"}, s.selection.Names())
}

func TestRemoveFile(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		want    []string
		wantErr bool
	}{
		{name: "first", index: 0, want: []string{"B", "C"}},
		{name: "middle", index: 1, want: []string{"A", "C"}},
		{name: "last", index: 2, want: []string{"A", "B"}},
		{name: "negative", index: -1, want: []string{"A", "B", "C"}, wantErr: true},
		{name: "stale", index: 3, want: []string{"A", "B", "C"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(nil, "", nil)
			s.SelectFiles(files("A", "B", "C"))

			err := s.RemoveFile(tt.index)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIndexOutOfRange)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, s.selection.Names())
		})
	}
}

func TestRemoveFile_Duplicates(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("A", "A", "B"))

	require.NoError(t, s.RemoveFile(1))
	assert.Equal(t, []string{"A", "B"}, s.selection.Names())
}

func TestRemoveFile_DoesNotAliasFiles(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("A", "B", "C"))
	before := s.Files()

	require.NoError(t, s.RemoveFile(0))
	assert.Equal(t, "A", before[0].Name)
}

func TestRemoveLastFile_DisablesSubmit(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("A"))
	s.SetPrompt("describe")
	require.True(t, s.CanSubmit())

	require.NoError(t, s.RemoveFile(0))
	assert.False(t, s.CanSubmit())
	assert.Empty(t, Render(s).Chips)
}

func TestClear(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("A"))
	s.SetPrompt("describe")

	s.Clear()
	assert.Zero(t, s.FileCount())
	assert.Empty(t, s.Prompt())
	assert.False(t, s.CanSubmit())
}

func TestConnectivityFrom(t *testing.T) {
	tests := []struct {
		name string
		resp analyzer.StatusResponse
		err  error
		want Connectivity
	}{
		{name: "ready", resp: analyzer.StatusResponse{Status: "ready", StatusCode: 200}, want: ConnReady},
		{name: "disconnected", resp: analyzer.StatusResponse{Status: "disconnected", StatusCode: 503}, want: ConnDisconnected},
		{name: "error body", resp: analyzer.StatusResponse{Status: "error", StatusCode: 500}, want: ConnDisconnected},
		{name: "request failed", err: analyzer.ErrConnectionFailed, want: ConnError},
		{name: "malformed", err: analyzer.ErrMalformedResponse, want: ConnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConnectivityFrom(tt.resp, tt.err))
		})
	}
}

func TestConnectivity_String(t *testing.T) {
	assert.Equal(t, "Checking…", ConnChecking.String())
	assert.Equal(t, "Ready", ConnReady.String())
	assert.Equal(t, "Disconnected", ConnDisconnected.String())
	assert.Equal(t, "Error", ConnError.String())
}

func TestNewState_Models(t *testing.T) {
	s := NewState(nil, "bakllava", nil)
	assert.Equal(t, analyzer.DefaultModels, s.Models())
	assert.Equal(t, "bakllava", s.Model())

	s = NewState([]string{"a", "b"}, "missing", nil)
	assert.Equal(t, "a", s.Model())
}

func TestSetModel(t *testing.T) {
	s := NewState([]string{"a", "b"}, "a", nil)
	require.NoError(t, s.SetModel("b"))
	assert.Equal(t, "b", s.Model())

	assert.ErrorIs(t, s.SetModel("c"), ErrUnknownModel)
	assert.Equal(t, "b", s.Model())
}

func TestCycleModel(t *testing.T) {
	s := NewState([]string{"a", "b", "c"}, "a", nil)
	s.CycleModel(1)
	assert.Equal(t, "b", s.Model())
	s.CycleModel(-2)
	assert.Equal(t, "c", s.Model())
	s.CycleModel(1)
	assert.Equal(t, "a", s.Model())
}

func TestSetModels(t *testing.T) {
	s := NewState([]string{"a", "b"}, "b", nil)

	s.SetModels([]string{"b", "c"})
	assert.Equal(t, "b", s.Model())

	s.SetModels([]string{"d"})
	assert.Equal(t, "d", s.Model())

	s.SetModels(nil)
	assert.Equal(t, []string{"d"}, s.Models())
}

func TestApplyPill(t *testing.T) {
	s := NewState(nil, "", nil)
	require.NoError(t, s.ApplyPill(0))
	assert.Equal(t, DefaultPills[0].Prompt, s.Prompt())

	assert.ErrorIs(t, s.ApplyPill(len(DefaultPills)), ErrUnknownPill)
	assert.ErrorIs(t, s.ApplyPill(-1), ErrUnknownPill)
}

func TestBeginSubmit(t *testing.T) {
	s := NewState(nil, "moondream", nil)
	s.SelectFiles(files("cat.png"))
	s.SetPrompt("  describe \n")
	s.SetNotice("old")

	req, err := s.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, "describe", req.Prompt)
	assert.Equal(t, "moondream", req.Model)
	require.Len(t, req.Files, 1)
	assert.Equal(t, "cat.png", req.Files[0].Name)

	assert.True(t, s.Busy())
	assert.Empty(t, s.Notice())
	assert.Equal(t, "  describe \n", s.Prompt())
	assert.Equal(t, 1, s.FileCount())
}

func TestBeginSubmit_CannotSubmit(t *testing.T) {
	s := NewState(nil, "", nil)
	_, err := s.BeginSubmit()
	assert.ErrorIs(t, err, ErrCannotSubmit)
	assert.False(t, s.Busy())
}

func TestFinishSubmit_Success(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("cat.png"))
	s.SetPrompt("describe")
	_, err := s.BeginSubmit()
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 15, 4, 5, 0, time.Local)
	s.FinishSubmit(analyzer.AnalyzeResult{
		Result: "A cat.",
		Model:  "llava",
		Images: []analyzer.ImagePreview{{Name: "cat.png", Data: "data:image/png;base64,AA=="}},
	}, nil, at)

	assert.False(t, s.Busy())
	assert.True(t, s.CanSubmit())
	require.NotNil(t, s.Result())
	assert.Equal(t, "A cat.", s.Result().Answer)
	assert.Equal(t, at, s.Result().ReceivedAt)
	assert.Empty(t, s.Alert())
}

func TestFinishSubmit_FailureKeepsPreviousResult(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("cat.png"))
	s.SetPrompt("describe")

	_, err := s.BeginSubmit()
	require.NoError(t, err)
	s.FinishSubmit(analyzer.AnalyzeResult{Result: "first", Model: "llava"}, nil, time.Now())

	_, err = s.BeginSubmit()
	require.NoError(t, err)
	s.FinishSubmit(analyzer.AnalyzeResult{}, &analyzer.APIError{StatusCode: 500, Message: "bad input"}, time.Now())

	assert.False(t, s.Busy())
	assert.Equal(t, "first", s.Result().Answer)
	assert.Contains(t, s.Alert(), "Error: bad input")
	assert.Contains(t, s.Alert(), "ollama serve")

	s.DismissAlert()
	assert.Empty(t, s.Alert())
}

func TestFinishSubmit_Canceled(t *testing.T) {
	s := NewState(nil, "", nil)
	s.SelectFiles(files("cat.png"))
	s.SetPrompt("describe")
	_, err := s.BeginSubmit()
	require.NoError(t, err)

	s.FinishSubmit(analyzer.AnalyzeResult{}, fmt.Errorf("analyze: %w", context.Canceled), time.Now())

	assert.False(t, s.Busy())
	assert.Empty(t, s.Alert())
	assert.Equal(t, "Analysis canceled", s.Notice())
}

func TestCopyConfirmation(t *testing.T) {
	s := NewState(nil, "", nil)

	first := s.ConfirmCopy()
	assert.True(t, s.CopyConfirmed())

	second := s.ConfirmCopy()
	assert.False(t, s.ExpireCopy(first), "stale expiry must not revert a newer copy")
	assert.True(t, s.CopyConfirmed())

	assert.True(t, s.ExpireCopy(second))
	assert.False(t, s.CopyConfirmed())
	assert.False(t, s.ExpireCopy(second))
}

func TestAlertText(t *testing.T) {
	got := AlertText(errors.New("boom"))
	assert.Equal(t, "Error: boom\n\nMake sure the analysis service is running and Ollama is started: ollama serve", got)

	got = AlertText(&analyzer.APIError{StatusCode: 400, Message: "No images provided"})
	assert.Contains(t, got, "Error: No images provided")
}
