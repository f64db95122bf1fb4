package cli

import (
	"errors"
	"fmt"

	"github.com/daryltucker/codefix-bench/internal/config"
	"github.com/daryltucker/codefix-bench/internal/model"
	"github.com/daryltucker/codefix-bench/internal/output"
	"github.com/daryltucker/codefix-bench/internal/suite"
)

// loadConfig loads the config file, applies the persistent flag overrides
// and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if urlOverride != "" {
		cfg.URL = urlOverride
	}
	if len(modelsOverride) > 0 {
		cfg.Models = modelsOverride
	}
	if suiteOverride != "" {
		cfg.Suite = suiteOverride
	}
	if suiteFileOverride != "" {
		cfg.SuiteFile = suiteFileOverride
	}
	if styleOverride != "" {
		cfg.Style = styleOverride
	}
}

// loadCases returns the configured suite. With a suite file, the default
// suite name falls back to the file's first suite.
func loadCases(cfg *config.Config) ([]model.TestCase, error) {
	if cfg.SuiteFile == "" {
		return suite.Load(cfg.Suite)
	}

	cases, err := suite.LoadFile(cfg.SuiteFile, cfg.Suite)
	if errors.Is(err, suite.ErrUnknownSuite) && cfg.Suite == suite.DefaultName {
		output.Logger.Debug("Suite not in file, using its first suite", "suite", cfg.Suite, "file", cfg.SuiteFile)
		return suite.LoadFile(cfg.SuiteFile, "")
	}
	return cases, err
}
