// Package config loads interpreter options from an optional lox.toml,
// discovered by walking up from the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full interpreter configuration.
type Config struct {
	VM   VMConfig   `toml:"vm"`
	GC   GCConfig   `toml:"gc"`
	REPL REPLConfig `toml:"repl"`
}

// VMConfig holds execution options.
type VMConfig struct {
	Trace             bool `toml:"trace"`
	PrintCode         bool `toml:"print-code"`
	StackTraceOnError bool `toml:"stack-trace-on-error"`
}

// GCConfig holds collector options.
type GCConfig struct {
	Stress       bool `toml:"stress"`
	Log          bool `toml:"log"`
	GrowthFactor int  `toml:"growth-factor"`
	Next         int  `toml:"next"`
}

// REPLConfig holds interactive-prompt options.
type REPLConfig struct {
	Prompt string `toml:"prompt"`
}

// Default returns the configuration used when no lox.toml exists.
func Default() Config {
	return Config{
		VM: VMConfig{
			StackTraceOnError: true,
		},
		GC: GCConfig{
			GrowthFactor: 2,
			Next:         1024 * 1024,
		},
		REPL: REPLConfig{
			Prompt: "> ",
		},
	}
}

// findLoxToml walks from startDir toward the filesystem root looking
// for a lox.toml.
func findLoxToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "lox.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load returns the configuration for startDir: defaults overlaid with
// the nearest lox.toml, if one exists.
func Load(startDir string) (Config, error) {
	cfg := Default()
	path, ok, err := findLoxToml(startDir)
	if err != nil {
		return cfg, err
	}
	if !ok {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if cfg.GC.GrowthFactor <= 0 {
		cfg.GC.GrowthFactor = 2
	}
	if cfg.GC.Next <= 0 {
		cfg.GC.Next = 1024 * 1024
	}
	if cfg.REPL.Prompt == "" {
		cfg.REPL.Prompt = "> "
	}
	return cfg, nil
}
