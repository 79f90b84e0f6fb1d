// Package startup provides startup validation and initialization for blueprint.
//
// It probes the analysis service before a headless run so a missing
// service shows up in the log, and wires the client, controller and
// front end together.
package startup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hurricanerix/blueprint/internal/analyzer"
)

var (
	// ErrServiceNotReady is returned when the analysis service is unreachable
	// or reports a status other than ready
	ErrServiceNotReady = errors.New("analysis service not ready")
)

const (
	// serviceTimeout is the timeout for the startup status probe
	serviceTimeout = 5 * time.Second
)

// ValidateService checks that the analysis service answers GET /api/status
// with status "ready". The run continues either way; the result only
// decides what gets logged.
func ValidateService(client *analyzer.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
	defer cancel()

	resp, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("%w at %s: %w", ErrServiceNotReady, client.Endpoint(), err)
	}

	if !resp.Ready() {
		reason := resp.Status
		if reason == "" {
			reason = fmt.Sprintf("status code %d", resp.StatusCode)
		}
		if resp.Error != "" {
			reason += ": " + resp.Error
		}
		return fmt.Errorf("%w at %s: %s", ErrServiceNotReady, client.Endpoint(), reason)
	}

	return nil
}
