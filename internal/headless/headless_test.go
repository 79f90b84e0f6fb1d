package headless

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurricanerix/blueprint/internal/analyzer"
	"github.com/hurricanerix/blueprint/internal/ui"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func newController(t *testing.T, mux *http.ServeMux) *ui.Controller {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := analyzer.NewClientWithConfig(srv.URL, 5*time.Second)
	return ui.NewController(client, ui.Options{
		Now: func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
	})
}

func TestRun_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ready"}`))
	})
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("prompt"); got != "describe" {
			t.Errorf("prompt = %q, want describe", got)
		}
		if got := len(r.MultipartForm.File["images"]); got != 2 {
			t.Errorf("got %d images, want 2", got)
		}
		w.Write([]byte(`{"success":true,"result":"A cat.","model":"llava","images":[{"name":"cat.png","data":"data:image/png;base64,AA=="}]}`))
	})
	ctrl := newController(t, mux)

	a := writeFile(t, "cat.png", "x")
	b := writeFile(t, "dog.png", "y")

	var out bytes.Buffer
	err := Run(context.Background(), ctrl, []string{a, b}, "  describe  ", &out, nil)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Model: llava\n")
	assert.Contains(t, got, "Time: 9:30:00 AM\n")
	assert.Contains(t, got, "Image: cat.png (1 B)\n")
	assert.True(t, strings.HasSuffix(got, "\nA cat.\n"), "output = %q", got)
	assert.Equal(t, ui.ConnReady, ctrl.State().Status())
}

func TestRun_ServiceNotReadyStillSubmits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"disconnected"}`))
	})
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"bad input"}`))
	})
	ctrl := newController(t, mux)

	err := Run(context.Background(), ctrl, []string{writeFile(t, "cat.png", "x")}, "describe", io.Discard, nil)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Contains(t, analysisErr.Error(), "Error: bad input")
	assert.ErrorIs(t, err, analyzer.ErrRequestFailed)
	assert.Equal(t, ui.ConnDisconnected, ctrl.State().Status())
	assert.False(t, ctrl.State().Busy())
}

func TestRun_MissingFile(t *testing.T) {
	var analyzed bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ready"}`))
	})
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		analyzed = true
	})
	ctrl := newController(t, mux)

	err := Run(context.Background(), ctrl, []string{filepath.Join(t.TempDir(), "nope.png")}, "describe", io.Discard, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, analyzed)
}

func TestRun_BlankPrompt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ready"}`))
	})
	ctrl := newController(t, mux)

	err := Run(context.Background(), ctrl, []string{writeFile(t, "cat.png", "x")}, "   ", io.Discard, nil)
	assert.ErrorIs(t, err, ui.ErrCannotSubmit)
}

func TestRun_Canceled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ready"}`))
	})
	ctrl := newController(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, ctrl, []string{writeFile(t, "cat.png", "x")}, "describe", io.Discard, nil)
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.Empty(t, ctrl.State().Alert())
}

func TestWrite_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(&out, ui.View{EmptyState: true}))
	assert.Equal(t, ui.EmptyStateLabel+"\n", out.String())
}

func TestWrite_KeepsTrailingNewline(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Write(&out, ui.View{Result: &ui.ResultView{Model: "llava", Timestamp: "1:00:00 PM", Answer: "line\n"}}))
	assert.Equal(t, "Model: llava\nTime: 1:00:00 PM\n\nline\n", out.String())
}
