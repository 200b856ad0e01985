package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"lox/internal/config"
)

func TestDefaultWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GC.GrowthFactor != 2 || cfg.GC.Next != 1024*1024 {
		t.Errorf("gc defaults = %+v", cfg.GC)
	}
	if !cfg.VM.StackTraceOnError {
		t.Error("stack traces should default on")
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("prompt = %q", cfg.REPL.Prompt)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[vm]
trace = true

[gc]
stress = true
growth-factor = 4

[repl]
prompt = "lox> "
`
	if err := os.WriteFile(filepath.Join(dir, "lox.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.VM.Trace || !cfg.GC.Stress {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.GC.GrowthFactor != 4 {
		t.Errorf("growth-factor = %d", cfg.GC.GrowthFactor)
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("prompt = %q", cfg.REPL.Prompt)
	}
	// Unset values keep their defaults.
	if cfg.GC.Next != 1024*1024 {
		t.Errorf("next = %d", cfg.GC.Next)
	}
}

func TestDiscoveryWalksUp(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lox.toml"), []byte("[vm]\ntrace = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.VM.Trace {
		t.Error("lox.toml in an ancestor directory should be found")
	}
}
