package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hurricanerix/blueprint/internal/config"
	"github.com/hurricanerix/blueprint/internal/headless"
	"github.com/hurricanerix/blueprint/internal/logging"
	"github.com/hurricanerix/blueprint/internal/startup"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Parse configuration from CLI flags
	cfg, err := config.Parse(args, stderr)
	if errors.Is(err, config.ErrShowHelp) || errors.Is(err, config.ErrShowVersion) {
		// Help or version was shown, exit successfully
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Create logger early
	logger, closer, err := startup.CreateLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	// Log startup
	logger.Info("Starting blueprint %s...", config.Version)
	logger.Debug("Configuration: api-url=%s, model=%s, poll-interval=%s, copy-feedback=%s, request-timeout=%s, headless=%t, files=%d",
		cfg.APIURL, cfg.Model, cfg.PollInterval, cfg.CopyFeedback, cfg.RequestTimeout, cfg.Headless, len(cfg.Files))
	logger.Debug("Log level: %s", cfg.LogLevel)

	probeService(cfg, logger)

	// Initialize all components
	logger.Debug("Initializing components...")
	components, err := startup.InitializeAll(cfg, logger)
	if err != nil {
		logger.Error("Initialization failed: %v", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Run the UI and wait for it to exit or a shutdown signal
	if err := startup.Run(context.Background(), components, cfg, stdout); err != nil {
		logger.Error("Run failed: %v", err)
		fmt.Fprintf(stderr, "%v\n", err)
		var analysisErr *headless.AnalysisError
		if !errors.As(err, &analysisErr) {
			return 1
		}
		return 2
	}

	return 0
}

// probeService logs whether the analysis service is ready before a headless
// run. The UI skips it: its own first status poll reports connectivity
// without holding back the first frame.
func probeService(cfg *config.Config, logger *logging.Logger) {
	if !cfg.Headless {
		return
	}

	logger.Debug("Validating analysis service...")
	if err := startup.ValidateService(startup.CreateClient(cfg)); err != nil {
		logger.Warn("Analysis service check failed: %v", err)
		return
	}
	logger.Info("Analysis service ready at %s", cfg.APIURL)
}
