package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// noEnv is a lookup with an empty environment so tests do not depend on
// the developer's shell.
func noEnv(string) (string, bool) { return "", false }

func TestParse_Defaults(t *testing.T) {
	output := &bytes.Buffer{}
	cfg, err := ParseWithEnv([]string{}, output, noEnv)
	if err != nil {
		t.Fatalf("ParseWithEnv() error = %v, want nil", err)
	}

	if cfg.APIURL != defaultAPIURL {
		t.Errorf("APIURL = %s, want %s", cfg.APIURL, defaultAPIURL)
	}
	if cfg.Model != defaultModel {
		t.Errorf("Model = %s, want %s", cfg.Model, defaultModel)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.CopyFeedback != defaultCopyFeedback {
		t.Errorf("CopyFeedback = %v, want %v", cfg.CopyFeedback, defaultCopyFeedback)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.RequestTimeout)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, defaultLogLevel)
	}
	if cfg.Headless {
		t.Error("Headless = true, want false")
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files = %v, want empty", cfg.Files)
	}
}

func TestParse_CustomFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "custom api url with trailing slash",
			args: []string{"--api-url", "http://drawings.local:8000/"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.APIURL != "http://drawings.local:8000" {
					t.Errorf("APIURL = %s, want trailing slash trimmed", cfg.APIURL)
				}
			},
		},
		{
			name: "model and prompt",
			args: []string{"--model", "moondream", "--prompt", "List dimensions"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Model != "moondream" {
					t.Errorf("Model = %s, want moondream", cfg.Model)
				}
				if cfg.Prompt != "List dimensions" {
					t.Errorf("Prompt = %q, want %q", cfg.Prompt, "List dimensions")
				}
			},
		},
		{
			name: "durations",
			args: []string{"--poll-interval", "30s", "--copy-feedback", "500ms", "--request-timeout", "2m"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.PollInterval != 30*time.Second {
					t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
				}
				if cfg.CopyFeedback != 500*time.Millisecond {
					t.Errorf("CopyFeedback = %v, want 500ms", cfg.CopyFeedback)
				}
				if cfg.RequestTimeout != 2*time.Minute {
					t.Errorf("RequestTimeout = %v, want 2m", cfg.RequestTimeout)
				}
			},
		},
		{
			name: "positional files",
			args: []string{"part.png", "assembly.jpg"},
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Files) != 2 || cfg.Files[0] != "part.png" || cfg.Files[1] != "assembly.jpg" {
					t.Errorf("Files = %v, want [part.png assembly.jpg]", cfg.Files)
				}
			},
		},
		{
			name: "headless with input",
			args: []string{"--no-tui", "--prompt", "Summarize", "part.png"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Headless {
					t.Error("Headless = false, want true")
				}
			},
		},
		{
			name: "log flags",
			args: []string{"--log-level", "DEBUG", "--log-file", "/tmp/blueprint.log"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "debug" {
					t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
				}
				if cfg.LogFile != "/tmp/blueprint.log" {
					t.Errorf("LogFile = %s, want /tmp/blueprint.log", cfg.LogFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			cfg, err := ParseWithEnv(tt.args, output, noEnv)
			if err != nil {
				t.Fatalf("ParseWithEnv() error = %v, want nil", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParse_EnvironmentDefaults(t *testing.T) {
	env := map[string]string{
		EnvAPIURL:   "https://analyzer.example.com",
		EnvModel:    "bakllava",
		EnvLogLevel: "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := ParseWithEnv(nil, &bytes.Buffer{}, lookup)
	if err != nil {
		t.Fatalf("ParseWithEnv() error = %v, want nil", err)
	}
	if cfg.APIURL != "https://analyzer.example.com" {
		t.Errorf("APIURL = %s, want env value", cfg.APIURL)
	}
	if cfg.Model != "bakllava" {
		t.Errorf("Model = %s, want env value", cfg.Model)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %s, want env value", cfg.LogLevel)
	}

	// Flags win over the environment
	cfg, err = ParseWithEnv([]string{"--model", "llava"}, &bytes.Buffer{}, lookup)
	if err != nil {
		t.Fatalf("ParseWithEnv() error = %v, want nil", err)
	}
	if cfg.Model != "llava" {
		t.Errorf("Model = %s, want flag value", cfg.Model)
	}
}

func TestParse_BlankEnvironmentIgnored(t *testing.T) {
	lookup := func(k string) (string, bool) { return "   ", true }

	cfg, err := ParseWithEnv(nil, &bytes.Buffer{}, lookup)
	if err != nil {
		t.Fatalf("ParseWithEnv() error = %v, want nil", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Errorf("APIURL = %s, want default", cfg.APIURL)
	}
}

func TestParse_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := EnvModel + "=moondream\n"
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// Register the variable for restoration, then clear it so the file applies
	t.Setenv(EnvModel, "placeholder")
	os.Unsetenv(EnvModel)
	t.Setenv(EnvAPIURL, defaultAPIURL)
	t.Setenv(EnvLogLevel, defaultLogLevel)
	t.Chdir(dir)

	cfg, err := Parse(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	if cfg.Model != "moondream" {
		t.Errorf("Model = %s, want value from .env", cfg.Model)
	}
}

func TestParse_MissingDotEnvIsFine(t *testing.T) {
	t.Setenv(EnvAPIURL, defaultAPIURL)
	t.Setenv(EnvModel, defaultModel)
	t.Setenv(EnvLogLevel, defaultLogLevel)
	t.Chdir(t.TempDir())

	if _, err := Parse(nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "api url without scheme",
			args:    []string{"--api-url", "localhost:5001"},
			wantErr: ErrInvalidAPIURL,
		},
		{
			name:    "api url with ftp scheme",
			args:    []string{"--api-url", "ftp://localhost"},
			wantErr: ErrInvalidAPIURL,
		},
		{
			name:    "api url with query",
			args:    []string{"--api-url", "http://localhost:5001?x=1"},
			wantErr: ErrInvalidAPIURL,
		},
		{
			name:    "empty model",
			args:    []string{"--model", "  "},
			wantErr: ErrInvalidModel,
		},
		{
			name:    "poll interval too short",
			args:    []string{"--poll-interval", "10ms"},
			wantErr: ErrInvalidPollInterval,
		},
		{
			name:    "poll interval too long",
			args:    []string{"--poll-interval", "1h"},
			wantErr: ErrInvalidPollInterval,
		},
		{
			name:    "copy feedback too short",
			args:    []string{"--copy-feedback", "1ms"},
			wantErr: ErrInvalidCopyFeedback,
		},
		{
			name:    "negative request timeout",
			args:    []string{"--request-timeout", "-1s"},
			wantErr: ErrInvalidRequestTimeout,
		},
		{
			name:    "invalid log level",
			args:    []string{"--log-level", "trace"},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "headless without files",
			args:    []string{"--no-tui", "--prompt", "Summarize"},
			wantErr: ErrHeadlessNeedsInput,
		},
		{
			name:    "headless with blank prompt",
			args:    []string{"--no-tui", "--prompt", "   ", "part.png"},
			wantErr: ErrHeadlessNeedsInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			_, err := ParseWithEnv(tt.args, output, noEnv)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseWithEnv() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAPIURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"http://localhost:5001", false},
		{"https://analyzer.example.com/base", false},
		{"", true},
		{"/api", true},
		{"http://", true},
		{"http://host#frag", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateAPIURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAPIURL) {
				t.Errorf("ValidateAPIURL(%q) error = %v, want ErrInvalidAPIURL", tt.raw, err)
			}
		})
	}
}

func TestPrintHelp(t *testing.T) {
	output := &bytes.Buffer{}
	printHelp(output)

	helpText := output.String()

	expectedStrings := []string{
		"blueprint",
		"USAGE:",
		"--api-url",
		"--model",
		"--prompt",
		"--poll-interval",
		"--no-tui",
		"--log-level",
		"--help",
		"--version",
		"ollama serve",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(helpText, expected) {
			t.Errorf("help text missing %q", expected)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	output := &bytes.Buffer{}
	printVersion(output)

	want := "blueprint " + Version + "\n"
	if output.String() != want {
		t.Errorf("version output = %q, want %q", output.String(), want)
	}
}

func TestParse_HelpFlag(t *testing.T) {
	output := &bytes.Buffer{}
	cfg, err := ParseWithEnv([]string{"--help"}, output, noEnv)

	if err != ErrShowHelp {
		t.Errorf("Parse(--help) error = %v, want ErrShowHelp", err)
	}
	if cfg != nil {
		t.Error("Parse(--help) returned non-nil config")
	}
	if !strings.Contains(output.String(), "USAGE:") {
		t.Error("help output not written")
	}
}

func TestParse_VersionFlag(t *testing.T) {
	output := &bytes.Buffer{}
	cfg, err := ParseWithEnv([]string{"--version"}, output, noEnv)

	if err != ErrShowVersion {
		t.Errorf("Parse(--version) error = %v, want ErrShowVersion", err)
	}
	if cfg != nil {
		t.Error("Parse(--version) returned non-nil config")
	}
}

func TestParse_UnknownFlag(t *testing.T) {
	output := &bytes.Buffer{}
	_, err := ParseWithEnv([]string{"--port", "8080"}, output, noEnv)
	if err == nil {
		t.Fatal("Parse(--port) error = nil, want error")
	}
}
