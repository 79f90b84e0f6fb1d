package startup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hurricanerix/blueprint/internal/config"
	"github.com/hurricanerix/blueprint/internal/headless"
	"github.com/hurricanerix/blueprint/internal/tui"
)

// Run starts the configured front end and blocks until it finishes or a
// shutdown signal is received. It handles SIGTERM and SIGINT; cancellation
// aborts an analysis in flight and stops status polling.
//
// Headless mode writes the result to out. Returns nil on clean shutdown,
// error otherwise.
func Run(ctx context.Context, components *Components, cfg *config.Config, out io.Writer) error {
	// Create context that will be cancelled on signal
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Headless {
		return headless.Run(shutdownCtx, components.Controller, cfg.Files, cfg.Prompt, out, components.Logger.Named("headless"))
	}

	return runTUI(shutdownCtx, components, cfg, tea.WithAltScreen())
}

func runTUI(ctx context.Context, components *Components, cfg *config.Config, opts ...tea.ProgramOption) error {
	model := tui.New(ctx, components.Controller, tui.Options{
		PollInterval:   cfg.PollInterval,
		CopyFeedback:   cfg.CopyFeedback,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         components.Logger,
	})

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)

	components.Logger.Info("Starting UI: endpoint=%s", components.Client.Endpoint())
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			components.Logger.Info("Shutting down")
			return nil
		}
		return fmt.Errorf("ui error: %w", err)
	}

	components.Logger.Info("UI stopped")
	return nil
}
