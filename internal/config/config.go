// Package config holds the harness configuration. Everything is explicit:
// the harness constructor receives a Config, never reads ambient globals.
// Environment variables are bound through viper so flags override env which
// overrides defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Environment variables recognized by the harness. REGEN_TEST_FIXTURES keeps
// the name the historical suite used so existing CI wiring keeps working.
const (
	EnvRegen  = "REGEN_TEST_FIXTURES"
	EnvBinary = "NUGET_INSPECTOR"
)

// Default configuration values.
const (
	DefaultDataDir = "tests/data"
	DefaultBinary  = "build/nuget-inspector"
	DefaultWorkers = 4
	DefaultTimeout = 5 * time.Minute
)

// Config is the full harness configuration.
type Config struct {
	// DataDir is the root of the test data tree; it is also the
	// machine-specific path stripped by the normalizer.
	DataDir string
	// Binary is the nuget-inspector executable under test.
	Binary string
	// Table is the classification table file (YAML); empty means every
	// catalog entry defaults to expect-success.
	Table string
	// Regen switches the harness from verification to fixture regeneration.
	Regen bool
	// Workers bounds the parallel worker pool for verification runs.
	Workers int
	// Timeout bounds each inspector invocation.
	Timeout time.Duration
	// Verbose enables per-case progress logging.
	Verbose bool
}

// New creates a configuration with defaults overlaid by environment
// variables.
func New() *Config {
	v := viper.New()
	v.SetDefault("data-dir", DefaultDataDir)
	v.SetDefault("binary", DefaultBinary)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("timeout", DefaultTimeout)

	_ = v.BindEnv("regen", EnvRegen)
	_ = v.BindEnv("binary", EnvBinary)

	return &Config{
		DataDir: v.GetString("data-dir"),
		Binary:  v.GetString("binary"),
		Regen:   isTruthy(v.GetString("regen")),
		Workers: v.GetInt("workers"),
		Timeout: v.GetDuration("timeout"),
	}
}

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if _, err := os.Stat(c.DataDir); err != nil {
		return fmt.Errorf("data directory %s: %w", c.DataDir, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// isTruthy mirrors the historical suite's env toggle: any non-empty value
// other than explicit negatives enables the mode.
func isTruthy(s string) bool {
	switch s {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
