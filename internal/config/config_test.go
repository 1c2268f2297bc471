package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/flowtype/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.flowtype.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	want := config.Default()
	if cfg.MaxIterations != want.MaxIterations || cfg.TupleCap != want.TupleCap || cfg.DefaultFormat != want.DefaultFormat || len(cfg.Globals) != 0 {
		t.Errorf("expected Default() for a missing file, got %+v", cfg)
	}
}

func TestLoadOverlaysOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".flowtype.yaml")
	const body = "max_iterations: 250\nglobals:\n  - name: fetchMock\n    type: function\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxIterations != 250 {
		t.Errorf("MaxIterations = %d, want 250", cfg.MaxIterations)
	}
	// TupleCap and DefaultFormat were absent from the file, so defaults hold.
	if cfg.TupleCap != config.Default().TupleCap {
		t.Errorf("TupleCap = %d, want default %d", cfg.TupleCap, config.Default().TupleCap)
	}
	if cfg.DefaultFormat != config.Default().DefaultFormat {
		t.Errorf("DefaultFormat = %q, want default %q", cfg.DefaultFormat, config.Default().DefaultFormat)
	}
	if len(cfg.Globals) != 1 || cfg.Globals[0].Name != "fetchMock" {
		t.Errorf("Globals = %+v, want one entry named fetchMock", cfg.Globals)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".flowtype.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: [this is not an int"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected an error for malformed YAML, got nil")
	}
}
