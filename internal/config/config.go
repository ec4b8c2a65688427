// Package config loads the optional lineprof YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/lineprof"
)

// Config holds the settings a configuration file may carry. Zero values mean "use the default".
type Config struct {
	// Checks is a comma-separated list of checks or presets (default "all").
	Checks string `yaml:"checks"`

	// TimerUnit is the number of seconds per report time unit, used when the report has no "Timer unit:" line.
	TimerUnit float64 `yaml:"timer_unit"`

	// MinOutlierSamples is the number of lines with a per-hit value needed before outliers are looked for.
	MinOutlierSamples int `yaml:"min_outlier_samples"`

	Bands BandsConfig `yaml:"bands"`

	// Prompt is a path to a custom advisor prompt definition. Empty uses the built-in one.
	Prompt string `yaml:"prompt"`

	Harness HarnessConfig `yaml:"harness"`
}

// BandsConfig overrides severity bands per check.
type BandsConfig struct {
	HotLines       lineprof.Bands `yaml:"hot_lines"`
	HeavyLoops     lineprof.Bands `yaml:"heavy_loops"`
	SlowCalls      lineprof.Bands `yaml:"slow_calls"`
	PerHitOutliers lineprof.Bands `yaml:"per_hit_outliers"`
}

// HarnessConfig configures the profiled test run.
type HarnessConfig struct {
	// Command is the interpreter running the test suite (default "python3").
	Command string `yaml:"command"`

	// OutputDir is where the profiling plugin writes its report.
	OutputDir string `yaml:"output_dir"`

	// Timeout bounds the whole run, as a Go duration ("45m").
	Timeout string `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Checks: "all",
		Harness: HarnessConfig{
			Command: "python3",
		},
	}
}

// Load reads a configuration file. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided configuration file
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Harness.Command == "" {
		cfg.Harness.Command = Default().Harness.Command
	}

	return cfg, nil
}

// Options converts the configuration into analysis options.
func (c *Config) Options() (lineprof.Options, error) {
	checks, err := lineprof.ParseChecks(c.Checks)
	if err != nil {
		return lineprof.Options{}, err //nolint:wrapcheck
	}

	opts := lineprof.DefaultOptions()
	opts.Checks = checks

	if c.TimerUnit > 0 {
		opts.TimerUnit = c.TimerUnit
	}

	if c.MinOutlierSamples > 0 {
		opts.MinOutlierSamples = c.MinOutlierSamples
	}

	zeroBands := lineprof.Bands{}

	if c.Bands.HotLines != zeroBands {
		opts.HotLines = c.Bands.HotLines
	}

	if c.Bands.HeavyLoops != zeroBands {
		opts.HeavyLoops = c.Bands.HeavyLoops
	}

	if c.Bands.SlowCalls != zeroBands {
		opts.SlowCalls = c.Bands.SlowCalls
	}

	if c.Bands.PerHitOutliers != zeroBands {
		opts.PerHitOutliers = c.Bands.PerHitOutliers
	}

	return opts, nil
}

// HarnessTimeout parses the configured timeout. Zero means the harness default.
func (c *Config) HarnessTimeout() (time.Duration, error) {
	if c.Harness.Timeout == "" {
		return 0, nil
	}

	limit, err := time.ParseDuration(c.Harness.Timeout)
	if err != nil {
		return 0, fmt.Errorf("harness timeout %q: %w", c.Harness.Timeout, err)
	}

	return limit, nil
}
