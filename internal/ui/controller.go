package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hurricanerix/blueprint/internal/analyzer"
	"github.com/hurricanerix/blueprint/internal/logging"
)

// API is the part of the analysis service the controller talks to.
// *analyzer.Client implements it.
type API interface {
	Status(ctx context.Context) (analyzer.StatusResponse, error)
	Analyze(ctx context.Context, req analyzer.AnalyzeRequest) (analyzer.AnalyzeResult, error)
	Models(ctx context.Context) ([]string, error)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

// WriteAll calls f(text).
func (f ClipboardFunc) WriteAll(text string) error {
	return f(text)
}

// Options configures a Controller. Zero values get defaults.
type Options struct {
	Models    []string
	Model     string
	Pills     []Pill
	Clipboard Clipboard
	Now       func() time.Time
	Logger    *logging.Logger
}

// Controller owns the UI State and performs its side effects.
//
// Methods that only do IO (CheckStatus, FetchModels, Analyze) never touch
// the State and may run on any goroutine. Every other method mutates the
// State and must be called from the event loop.
type Controller struct {
	state     *State
	api       API
	clipboard Clipboard
	now       func() time.Time
	logger    *logging.Logger
}

// NewController creates a controller for api.
func NewController(api API, opts Options) *Controller {
	c := &Controller{
		state:     NewState(opts.Models, opts.Model, opts.Pills),
		api:       api,
		clipboard: opts.Clipboard,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if c.clipboard == nil {
		c.clipboard = ClipboardFunc(func(string) error { return errors.New("no clipboard available") })
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// State returns the controller's state.
func (c *Controller) State() *State {
	return c.state
}

// View renders the current state.
func (c *Controller) View() View {
	return Render(c.state)
}

// CheckStatus asks the service for its status. Failures are logged and
// folded into the returned Connectivity, never returned.
func (c *Controller) CheckStatus(ctx context.Context) Connectivity {
	resp, err := c.api.Status(ctx)
	conn := ConnectivityFrom(resp, err)
	if err != nil {
		c.logger.Debug("Status check failed: %v", err)
	} else {
		c.logger.Debug("Status check: status=%q code=%d", resp.Status, resp.StatusCode)
	}
	return conn
}

// ApplyStatus records a status check outcome.
func (c *Controller) ApplyStatus(conn Connectivity) {
	if prev := c.state.Status(); prev != conn {
		c.logger.Info("Analysis service %s -> %s", prev, conn)
	}
	c.state.SetStatus(conn)
}

// FetchModels asks the service which models it offers.
func (c *Controller) FetchModels(ctx context.Context) ([]string, error) {
	return c.api.Models(ctx)
}

// ApplyModels replaces the selector options with a fetched list. On error
// or an empty list the built-in options stay.
func (c *Controller) ApplyModels(models []string, err error) {
	if err != nil {
		c.logger.Warn("Keeping built-in model list: %v", err)
		return
	}
	if len(models) == 0 {
		c.logger.Debug("Service reported no models, keeping built-in list")
		return
	}
	c.state.SetModels(models)
	c.logger.Debug("Model list: %v (selected %s)", models, c.state.Model())
}

// BeginSubmit enters the busy state and returns the request to send.
func (c *Controller) BeginSubmit() (analyzer.AnalyzeRequest, error) {
	req, err := c.state.BeginSubmit()
	if err != nil {
		return req, err
	}
	c.logger.Info("Analyzing %d image(s) with %s: %s", len(req.Files), req.Model, strings.Join(c.state.selection.Names(), ", "))
	return req, nil
}

// Analyze sends req to the service.
func (c *Controller) Analyze(ctx context.Context, req analyzer.AnalyzeRequest) (analyzer.AnalyzeResult, error) {
	start := time.Now()
	res, err := c.api.Analyze(ctx, req)
	if err != nil {
		var apiErr *analyzer.APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("Analysis failed: status=%d request=%s message=%q details=%q",
				apiErr.StatusCode, apiErr.RequestID, apiErr.Message, apiErr.Details)
		} else {
			c.logger.Error("Analysis failed: %v", err)
		}
		return res, err
	}
	c.logger.Info("Analysis done in %s: request=%s model=%s answer=%d bytes",
		time.Since(start).Round(time.Millisecond), res.RequestID, res.Model, len(res.Result))
	return res, nil
}

// FinishSubmit leaves the busy state with the outcome of Analyze. The
// result timestamp is taken from the controller's clock.
func (c *Controller) FinishSubmit(res analyzer.AnalyzeResult, err error) {
	c.state.FinishSubmit(res, err, c.now())
}

// Copy writes the answer text, exactly as the service returned it, to the
// clipboard and, on success, shows the confirmation. The returned sequence
// number is passed to ExpireCopy when the confirmation should end. On
// failure a notice is shown instead.
func (c *Controller) Copy() (int, error) {
	res := c.state.Result()
	if res == nil {
		return 0, errors.New("nothing to copy")
	}
	if err := c.clipboard.WriteAll(res.Answer); err != nil {
		c.logger.Warn("Clipboard write failed: %v", err)
		c.state.SetNotice("Copy failed: clipboard unavailable")
		return 0, err
	}
	c.logger.Debug("Copied %d bytes to clipboard", len(res.Answer))
	return c.state.ConfirmCopy(), nil
}

// ExpireCopy ends the confirmation started by Copy with sequence seq.
func (c *Controller) ExpireCopy(seq int) {
	c.state.ExpireCopy(seq)
}
