// Package config loads driver and REPL settings from a YAML file.
//
// The file is looked up at $LOX_CONFIG, then ~/.loxrc.yml. A missing file
// is not an error; defaults apply.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable overriding the config path.
const EnvVar = "LOX_CONFIG"

// DefaultFile is the config file name looked up in the home directory.
const DefaultFile = ".loxrc.yml"

// Diagnostic output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds every setting the driver understands.
type Config struct {
	Path        string            `yaml:"-"`
	REPL        REPLConfig        `yaml:"repl"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// REPLConfig controls the interactive prompt.
type REPLConfig struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	HistoryFile        string `yaml:"history_file"`
	Color              *bool  `yaml:"color"`
}

// DiagnosticsConfig controls how static diagnostics are reported.
type DiagnosticsConfig struct {
	Format   string `yaml:"format"`
	Warnings *bool  `yaml:"warnings"`
}

// ColorEnabled reports whether the REPL should colorize output.
func (c *Config) ColorEnabled() bool {
	return c.REPL.Color == nil || *c.REPL.Color
}

// WarningsEnabled reports whether resolver warnings are printed.
func (c *Config) WarningsEnabled() bool {
	return c.Diagnostics.Warnings == nil || *c.Diagnostics.Warnings
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config: invalid %s:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:             "> ",
			ContinuationPrompt: ". ",
		},
		Diagnostics: DiagnosticsConfig{
			Format: FormatText,
		},
	}
}

// Locate returns the config path to use, or "" when none can be derived.
func Locate() string {
	if path := os.Getenv(EnvVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, DefaultFile)
}

// Load reads the config found by Locate, falling back to defaults when the
// file does not exist.
func Load() (*Config, error) {
	path := Locate()
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile parses the config at path over the defaults. Unknown keys are
// rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	cfg.Path = path

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.REPL.HistoryFile = expandHome(cfg.REPL.HistoryFile)
	return cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	switch c.Diagnostics.Format {
	case FormatText, FormatJSON:
	default:
		issues = append(issues, fmt.Sprintf("diagnostics.format must be %q or %q, got %q",
			FormatText, FormatJSON, c.Diagnostics.Format))
	}
	if c.REPL.Prompt == "" {
		issues = append(issues, "repl.prompt must not be empty")
	}
	if len(issues) > 0 {
		return &ValidationError{Path: c.Path, Issues: issues}
	}
	return nil
}

// expandHome replaces a leading "~/" with the home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
