package startup

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/hurricanerix/blueprint/internal/analyzer"
	"github.com/hurricanerix/blueprint/internal/config"
	"github.com/hurricanerix/blueprint/internal/logging"
	"github.com/hurricanerix/blueprint/internal/ui"
)

// Components holds all initialized application components
type Components struct {
	Client     *analyzer.Client
	Controller *ui.Controller
	Logger     *logging.Logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CreateLogger creates a logger with the configured log level.
//
// The terminal UI owns stdout and stderr, so in that mode logs go to
// --log-file or nowhere. Headless runs log to stderr unless --log-file is
// set. The returned closer releases the log file.
func CreateLogger(cfg *config.Config) (*logging.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logging.NewFromString(cfg.LogLevel, f), f, nil
	}

	if cfg.Headless {
		return logging.NewFromString(cfg.LogLevel, os.Stderr), nopCloser{}, nil
	}

	return logging.NewFromString(cfg.LogLevel, io.Discard), nopCloser{}, nil
}

// CreateClient creates an analysis service client with the configured URL.
// It does NOT validate connection - use ValidateService() separately.
func CreateClient(cfg *config.Config) *analyzer.Client {
	return analyzer.NewClientWithConfig(cfg.APIURL, cfg.RequestTimeout)
}

// CreateController creates the UI controller with the system clipboard and
// the configured model and prompt.
func CreateController(cfg *config.Config, client *analyzer.Client, logger *logging.Logger) *ui.Controller {
	ctrl := ui.NewController(client, ui.Options{
		Clipboard: ui.ClipboardFunc(clipboard.WriteAll),
		Logger:    logger.Named("ui"),
	})
	if err := ctrl.State().SetModel(cfg.Model); err != nil {
		logger.Warn("%v, using %s", err, ctrl.State().Model())
	}
	ctrl.State().SetPrompt(cfg.Prompt)
	return ctrl
}

// InitializeAll creates and initializes all application components.
// It does NOT validate dependencies - validation should be done separately.
//
// In TUI mode files named on the command line are staged up front. Headless
// mode loads them itself.
func InitializeAll(cfg *config.Config, logger *logging.Logger) (*Components, error) {
	logger.Debug("Initializing components")

	client := CreateClient(cfg)
	logger.Debug("Created analysis client: endpoint=%s, timeout=%s", client.Endpoint(), cfg.RequestTimeout)

	ctrl := CreateController(cfg, client, logger)
	logger.Debug("Created controller: model=%s", ctrl.State().Model())

	if !cfg.Headless && len(cfg.Files) > 0 {
		files, err := ui.LoadFiles(cfg.Files)
		if err != nil {
			return nil, fmt.Errorf("failed to load files: %w", err)
		}
		ctrl.State().SelectFiles(files)
		logger.Debug("Staged %d file(s) from the command line", len(files))
	}

	return &Components{
		Client:     client,
		Controller: ctrl,
		Logger:     logger,
	}, nil
}
