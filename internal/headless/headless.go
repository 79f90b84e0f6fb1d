// Package headless runs a single analysis without the terminal UI and
// prints the result as plain text.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hurricanerix/blueprint/internal/analyzer"
	"github.com/hurricanerix/blueprint/internal/image"
	"github.com/hurricanerix/blueprint/internal/logging"
	"github.com/hurricanerix/blueprint/internal/ui"
)

// AnalysisError is returned when the service rejects or fails an analysis.
// Its message is the alert the interactive client would show.
type AnalysisError struct {
	Alert string
	Err   error
}

func (e *AnalysisError) Error() string {
	return e.Alert
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Run stages paths with prompt on ctrl, submits once and writes the result
// to out. Loading the files and checking the service status happen
// concurrently; a service that is not ready is logged, not fatal, since
// the analyze response carries the real error.
func Run(ctx context.Context, ctrl *ui.Controller, paths []string, prompt string, out io.Writer, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Discard()
	}

	var (
		files []analyzer.File
		conn  ui.Connectivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = ui.LoadFiles(paths)
		return err
	})
	g.Go(func() error {
		conn = ctrl.CheckStatus(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ctrl.ApplyStatus(conn)
	if conn != ui.ConnReady {
		logger.Warn("Analysis service is %s, trying anyway", conn)
	}

	state := ctrl.State()
	state.SelectFiles(files)
	state.SetPrompt(prompt)

	req, err := ctrl.BeginSubmit()
	if err != nil {
		return err
	}
	res, err := ctrl.Analyze(ctx, req)
	ctrl.FinishSubmit(res, err)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &AnalysisError{Alert: state.Alert(), Err: err}
	}

	return Write(out, ctrl.View())
}

// Write prints the results panel of v as plain text.
func Write(out io.Writer, v ui.View) error {
	r := v.Result
	if r == nil {
		_, err := fmt.Fprintln(out, ui.EmptyStateLabel)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", r.Model)
	fmt.Fprintf(&b, "Time: %s\n", r.Timestamp)
	if r.RequestID != "" {
		fmt.Fprintf(&b, "Request: %s\n", r.RequestID)
	}
	for _, img := range r.Images {
		fmt.Fprintf(&b, "Image: %s\n", imageLine(img))
	}
	b.WriteString("\n")
	b.WriteString(r.Answer)
	if !strings.HasSuffix(r.Answer, "\n") {
		b.WriteString("\n")
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func imageLine(img ui.ImageView) string {
	uri, err := image.ParseDataURI(img.Data)
	if err != nil {
		return img.Name
	}
	info, err := image.Inspect(uri.Data)
	if err != nil {
		return fmt.Sprintf("%s (%s)", img.Name, image.HumanSize(len(uri.Data)))
	}
	return fmt.Sprintf("%s (%s %dx%d, %s)", img.Name, info.Format, info.Width, info.Height, image.HumanSize(len(uri.Data)))
}
