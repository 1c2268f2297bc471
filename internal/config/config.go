// Package config loads the optional `.flowtype.yaml` project file the CLI
// reads before running inference: solver limits, the default output
// format, and the table of ambient globals every inferred program sees.
// Decoding falls back to defaults when the file is absent, and the
// surface is narrowed to the handful of knobs the core actually exposes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Global describes one ambient identifier available to every inferred
// program without an explicit declaration, e.g. `console`, `Math`,
// `JSON`.
type Global struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Config is the decoded `.flowtype.yaml` shape.
type Config struct {
	MaxIterations int      `yaml:"max_iterations,omitempty"`
	TupleCap      int      `yaml:"tuple_cap,omitempty"`
	DefaultFormat string   `yaml:"default_format,omitempty"`
	Globals       []Global `yaml:"globals,omitempty"`
}

// Default returns the engine's built-in defaults, used when no project
// file is present or a field is left zero in one that is.
func Default() Config {
	return Config{
		MaxIterations: 100,
		TupleCap:      32,
		DefaultFormat: "report",
	}
}

// Load reads path if it exists, overlaying decoded fields onto Default().
// A missing file is not an error; it just means every default applies.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var decoded Config
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if decoded.MaxIterations > 0 {
		cfg.MaxIterations = decoded.MaxIterations
	}
	if decoded.TupleCap > 0 {
		cfg.TupleCap = decoded.TupleCap
	}
	if decoded.DefaultFormat != "" {
		cfg.DefaultFormat = decoded.DefaultFormat
	}
	if len(decoded.Globals) > 0 {
		cfg.Globals = decoded.Globals
	}
	return cfg, nil
}
