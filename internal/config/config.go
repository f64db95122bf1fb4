/*
PURPOSE:
  Defines the configuration structure and loading logic for codefix-bench.
  Adheres to "Config IS Code" philosophy: every value has a compiled-in
  default, a YAML file only overlays it.

REQUIREMENTS:
  User-specified:
  - Fixed, ordered list of model identifiers.
  - Fixed fixture suite and a single output artifact.

  Implementation-discovered:
  - Needs to support YAML parsing for optional overrides.
  - keep_alive "0" asks the service to unload the model after each answer.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/dashboard
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files are not an error (falls back to defaults).

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults reproduce the original hardcoded setup.

USAGE:
  cfg, err := config.Load("codefix_bench.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/codefix-bench/internal/prompt"
)

// Artifact formats accepted by `run`.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// Config represents the full configuration for codefix-bench.
type Config struct {
	URL    string   `yaml:"url"`
	Models []string `yaml:"models"`
	// Suite names an embedded fixture suite, or a suite inside SuiteFile.
	Suite     string `yaml:"suite"`
	SuiteFile string `yaml:"suite_file"`
	Style     string `yaml:"style"`

	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
	// Format is derived from OutputFile's extension when empty.
	Format string `yaml:"format"`

	KeepAlive      string        `yaml:"keep_alive"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // 0 = no client-side timeout
	Cooldown       time.Duration `yaml:"cooldown"`
	ReviewCooldown time.Duration `yaml:"review_cooldown"`

	Listen string `yaml:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		URL: "http://localhost:11434",
		Models: []string{
			"yi-coder:1.5b",
			"qwen2.5-coder:1.5b",
			"llama3.2:1b",
		},
		Suite:          "standard",
		Style:          string(prompt.StyleTerse),
		OutputDir:      ".",
		OutputFile:     "ket_qua_benchmark.xlsx",
		KeepAlive:      "0",
		ReviewCooldown: 500 * time.Millisecond,
		Listen:         "127.0.0.1:8501",
	}
}

// DefaultFiles are searched in order when no --config is given.
var DefaultFiles = []string{"codefix_bench.yaml", "bench.yaml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		found := false
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ArtifactFormat returns the configured format, falling back to the output
// file extension and then to xlsx.
func (c *Config) ArtifactFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	switch strings.ToLower(filepath.Ext(c.OutputFile)) {
	case ".csv":
		return FormatCSV
	case ".jsonl", ".ndjson":
		return FormatJSONL
	}
	return FormatXLSX
}

// OutputPath joins OutputDir and OutputFile.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// PromptStyle returns Style as a prompt.Style.
func (c *Config) PromptStyle() prompt.Style {
	return prompt.Style(c.Style)
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url must not be empty")
	}
	if !c.PromptStyle().Valid() {
		return fmt.Errorf("unknown style %q (want %s or %s)", c.Style, prompt.StyleTerse, prompt.StyleReview)
	}
	switch c.ArtifactFormat() {
	case FormatXLSX, FormatCSV, FormatJSONL:
	default:
		return fmt.Errorf("unknown format %q (want xlsx, csv or jsonl)", c.Format)
	}
	for i, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("models[%d] is empty", i)
		}
	}
	if c.RequestTimeout < 0 || c.Cooldown < 0 || c.ReviewCooldown < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
