package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "absent.yml"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != "> " || cfg.Diagnostics.Format != FormatText {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if !cfg.ColorEnabled() || !cfg.WarningsEnabled() {
		t.Error("color and warnings default to on")
	}
}

func TestLoadFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvVar, "")
	writeConfig(t, home, `
repl:
  prompt: "lox> "
  color: false
  history_file: ~/.lox_history
diagnostics:
  format: json
  warnings: false
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("expected custom prompt, got %q", cfg.REPL.Prompt)
	}
	if cfg.REPL.ContinuationPrompt != ". " {
		t.Errorf("unset keys keep their default, got %q", cfg.REPL.ContinuationPrompt)
	}
	if cfg.ColorEnabled() || cfg.WarningsEnabled() {
		t.Error("expected color and warnings disabled")
	}
	if cfg.Diagnostics.Format != FormatJSON {
		t.Errorf("expected json format, got %q", cfg.Diagnostics.Format)
	}
	if want := filepath.Join(home, ".lox_history"); cfg.REPL.HistoryFile != want {
		t.Errorf("expected history file %q, got %q", want, cfg.REPL.HistoryFile)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "repl:\n  continuation_prompt: \"... \"\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != path || cfg.REPL.ContinuationPrompt != "... " {
		t.Errorf("expected config from %s, got %+v", path, cfg)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("empty file must load as defaults: %v", err)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("expected default prompt, got %q", cfg.REPL.Prompt)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "repl:\n  promt: \"x\"\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "promt") {
		t.Errorf("expected unknown field error, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "repl:\n  prompt: \"\"\ndiagnostics:\n  format: xml\n")
	_, err := LoadFile(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Errorf("expected 2 issues, got %v", verr.Issues)
	}
}
