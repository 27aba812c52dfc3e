package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	if cfg.OutputSuffix != "_roundtrip.go" {
		t.Errorf("expected default suffix '_roundtrip.go', got %s", cfg.OutputSuffix)
	}

	if cfg.Register {
		t.Error("expected register to default to false")
	}

	if cfg.Directive != "roundtrip:derive" {
		t.Errorf("expected default directive 'roundtrip:derive', got %s", cfg.Directive)
	}

	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}

	level, err := cfg.Level()
	if err != nil || level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v (%v)", level, err)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
output_suffix: _rt.go
register: true
library_import: example.com/rt
directive: rt:derive
log_level: debug
watch:
  debounce: 250ms
`
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.OutputSuffix != "_rt.go" {
		t.Errorf("expected suffix '_rt.go', got %s", cfg.OutputSuffix)
	}

	if !cfg.Register {
		t.Error("expected register to be true")
	}

	if cfg.LibraryImport != "example.com/rt" {
		t.Errorf("expected library import 'example.com/rt', got %s", cfg.LibraryImport)
	}

	if cfg.Directive != "rt:derive" {
		t.Errorf("expected directive 'rt:derive', got %s", cfg.Directive)
	}

	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("register: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ROUNDTRIP_REGISTER", "true")
	t.Setenv("ROUNDTRIP_WATCH_DEBOUNCE", "1s")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !cfg.Register {
		t.Error("expected environment to override register")
	}

	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %s", cfg.Watch.Debounce)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"suffix without extension", "output_suffix: _roundtrip\n"},
		{"test suffix", "output_suffix: _roundtrip_test.go\n"},
		{"empty library", "library_import: \"\"\n"},
		{"empty directive", "directive: \"//\"\n"},
		{"bad level", "log_level: loud\n"},
		{"negative debounce", "watch:\n  debounce: -1s\n"},
		{"malformed yaml", "register: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(tmpDir); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Register = true
	cfg.OutputSuffix = "_rt.go"
	cfg.Watch.Debounce = 2 * time.Second

	path, err := Write(tmpDir, cfg)
	if err != nil {
		t.Fatalf("expected no error writing config, got %v", err)
	}
	if path != filepath.Join(tmpDir, FileName) {
		t.Errorf("unexpected path %s", path)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, wrote %+v", *loaded, *cfg)
	}
}

func TestWriteRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	if _, err := Write(t.TempDir(), cfg); err == nil {
		t.Error("expected an error")
	}
}
