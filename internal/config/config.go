// Package config provides configuration management for blueprint.
//
// Configuration is parsed from CLI flags with sensible defaults.
// Defaults may be overridden from the environment, which is optionally
// seeded from a .env file in the working directory.
// The Config struct is passed to components during initialization.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Version is the blueprint application version
	Version = "0.2.0"

	// Default values for CLI flags
	defaultAPIURL         = "http://localhost:5001"
	defaultModel          = "llava"
	defaultPollInterval   = 10 * time.Second
	defaultCopyFeedback   = 2 * time.Second
	defaultRequestTimeout = 0
	defaultLogLevel       = "info"

	// Validation constraints
	minPollInterval = 1 * time.Second
	maxPollInterval = 10 * time.Minute
	minCopyFeedback = 100 * time.Millisecond
	maxCopyFeedback = 1 * time.Minute

	// Environment variables consulted for defaults
	EnvAPIURL   = "BLUEPRINT_API_URL"
	EnvModel    = "BLUEPRINT_MODEL"
	EnvLogLevel = "BLUEPRINT_LOG_LEVEL"

	// DotEnvFile is loaded from the working directory when present
	DotEnvFile = ".env"
)

var (
	// ErrInvalidAPIURL is returned when the API URL is not an absolute http(s) URL
	ErrInvalidAPIURL = errors.New("api-url must be an absolute http or https URL with a host")
	// ErrInvalidModel is returned when the model name is empty
	ErrInvalidModel = errors.New("model must not be empty")
	// ErrInvalidPollInterval is returned when poll interval is out of range
	ErrInvalidPollInterval = errors.New("poll-interval must be between 1s and 10m")
	// ErrInvalidCopyFeedback is returned when copy feedback duration is out of range
	ErrInvalidCopyFeedback = errors.New("copy-feedback must be between 100ms and 1m")
	// ErrInvalidRequestTimeout is returned when request timeout is negative
	ErrInvalidRequestTimeout = errors.New("request-timeout must be >= 0 (0 = no timeout)")
	// ErrInvalidLogLevel is returned when log level is not recognized
	ErrInvalidLogLevel = errors.New("log-level must be one of: debug, info, warn, error")
	// ErrHeadlessNeedsInput is returned when --no-tui is used without files or prompt
	ErrHeadlessNeedsInput = errors.New("--no-tui requires at least one image and a non-empty --prompt")
	// ErrShowHelp is returned when --help flag is requested
	ErrShowHelp = errors.New("help requested")
	// ErrShowVersion is returned when --version flag is requested
	ErrShowVersion = errors.New("version requested")
)

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// Config holds all configuration values for blueprint.
// Values are populated from CLI flags with defaults applied.
type Config struct {
	// Analysis API
	APIURL         string
	Model          string
	RequestTimeout time.Duration

	// Interface behavior
	Prompt       string
	Files        []string
	PollInterval time.Duration
	CopyFeedback time.Duration
	Headless     bool

	// Logging configuration
	LogLevel string
	LogFile  string

	// Internal flags
	showHelp    bool
	showVersion bool
}

// Parse parses CLI flags into a Config struct using the process
// environment for defaults. A .env file in the working directory is
// loaded first; variables already set in the environment win.
// If --help or --version is requested, it prints the output and
// returns ErrShowHelp or ErrShowVersion.
func Parse(args []string, output io.Writer) (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}
	return ParseWithEnv(args, output, os.LookupEnv)
}

// ParseWithEnv is Parse with an explicit environment lookup.
func ParseWithEnv(args []string, output io.Writer, lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	c := &Config{}

	fs := flag.NewFlagSet("blueprint", flag.ContinueOnError)
	fs.SetOutput(output)

	// API flags
	fs.StringVar(&c.APIURL, "api-url", envOr(lookup, EnvAPIURL, defaultAPIURL), "Analysis API base URL")
	fs.StringVar(&c.Model, "model", envOr(lookup, EnvModel, defaultModel), "Vision model to select initially")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", defaultRequestTimeout, "Analyze request timeout (0 = none)")

	// Interface flags
	fs.StringVar(&c.Prompt, "prompt", "", "Initial prompt text")
	fs.DurationVar(&c.PollInterval, "poll-interval", defaultPollInterval, "Status poll interval")
	fs.DurationVar(&c.CopyFeedback, "copy-feedback", defaultCopyFeedback, "How long the copy confirmation is shown")
	fs.BoolVar(&c.Headless, "no-tui", false, "Analyze once and print the result instead of starting the UI")

	// Logging flags
	fs.StringVar(&c.LogLevel, "log-level", envOr(lookup, EnvLogLevel, defaultLogLevel), "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", "", "Write logs to this file")

	// Special flags
	fs.BoolVar(&c.showHelp, "help", false, "Show help message")
	fs.BoolVar(&c.showVersion, "version", false, "Show version information")

	// Parse flags
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Handle --help
	if c.showHelp {
		printHelp(output)
		return nil, ErrShowHelp
	}

	// Handle --version
	if c.showVersion {
		printVersion(output)
		return nil, ErrShowVersion
	}

	c.Files = fs.Args()
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.Model = strings.TrimSpace(c.Model)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	// Validate configuration
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func envOr(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// validate checks that all configuration values are within valid ranges
func (c *Config) validate() error {
	// Validate API URL
	if err := ValidateAPIURL(c.APIURL); err != nil {
		return err
	}

	if c.Model == "" {
		return ErrInvalidModel
	}

	if c.PollInterval < minPollInterval || c.PollInterval > maxPollInterval {
		return ErrInvalidPollInterval
	}

	if c.CopyFeedback < minCopyFeedback || c.CopyFeedback > maxCopyFeedback {
		return ErrInvalidCopyFeedback
	}

	if c.RequestTimeout < 0 {
		return ErrInvalidRequestTimeout
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return ErrInvalidLogLevel
	}

	if c.Headless && (len(c.Files) == 0 || strings.TrimSpace(c.Prompt) == "") {
		return ErrHeadlessNeedsInput
	}

	return nil
}

// ValidateAPIURL checks that raw is an absolute http or https URL with a
// host. Query strings and fragments are rejected since endpoint paths are
// appended to the base.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAPIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidAPIURL
	}
	if u.Host == "" || u.RawQuery != "" || u.Fragment != "" {
		return ErrInvalidAPIURL
	}
	return nil
}

// printHelp prints usage information
func printHelp(w io.Writer) {
	fmt.Fprintf(w, `blueprint - Ask questions about engineering drawings

USAGE:
    blueprint [FLAGS] [IMAGE...]

FLAGS:
    --api-url <URL>            Analysis API base URL (default: %s, env: %s)
    --model <MODEL>            Vision model to select initially (default: %s, env: %s)
    --prompt <TEXT>            Initial prompt text
    --poll-interval <DUR>      Status poll interval (default: %s)
    --copy-feedback <DUR>      Copy confirmation duration (default: %s)
    --request-timeout <DUR>    Analyze request timeout, 0 = none (default: 0)
    --no-tui                   Analyze once and print the result
    --log-level <LEVEL>        Log level: debug, info, warn, error (default: %s, env: %s)
    --log-file <PATH>          Write logs to a file (the UI discards logs otherwise)
    --help                     Show this help message
    --version                  Show version information

EXAMPLES:
    # Start the interface
    blueprint

    # Stage two drawings and a prompt
    blueprint --prompt "List all dimensions" part.png assembly.png

    # One-shot analysis for scripts
    blueprint --no-tui --model moondream --prompt "Summarize" part.png

REQUIREMENTS:
    - the analysis API must be running (default: %s)
    - ollama must be running behind it: ollama serve
`,
		defaultAPIURL, EnvAPIURL, defaultModel, EnvModel,
		defaultPollInterval, defaultCopyFeedback,
		defaultLogLevel, EnvLogLevel, defaultAPIURL)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "blueprint %s\n", Version)
}
