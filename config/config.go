// Package config provides settings loading and validation for a run.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/hexflake/evolve"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds everything a run needs. The search settings sit at the top
// level so flat JSON settings files (population_sz, num_children, ...) load as-is.
type Config struct {
	evolve.Settings `yaml:",inline"`

	Run       RunConfig       `yaml:"run"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RunConfig holds per-invocation parameters.
type RunConfig struct {
	Seed      uint64 `yaml:"seed"`       // 0 = time-based
	OutputDir string `yaml:"output_dir"` // empty = no files written
}

// TelemetryConfig holds progress and output parameters.
type TelemetryConfig struct {
	LogStats        bool `yaml:"log_stats"`         // JSON logs to stdout instead of text to stderr
	HallOfFameSize  int  `yaml:"hall_of_fame_size"` // best rule tables kept across the run
	WriteSnowflakes bool `yaml:"write_snowflakes"`  // render final grids into snowflakes.txt
}

// Load loads configuration from a YAML (or JSON) file, merging with the
// embedded defaults. If path is empty, only the defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks the settings the search assumes to be well formed.
func (c *Config) Validate() error {
	s := c.Settings
	p := s.ScoreParams
	var errs []error

	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", name, v))
		}
	}
	probability := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in [0, 1], got %g", name, v))
		}
	}

	positive("population_sz", s.PopulationSize)
	positive("num_children", s.NumChildren)
	positive("max_generations", s.MaxGenerations)
	positive("tries_per_generation", s.TriesPerGeneration)
	if s.NumStates < 2 {
		errs = append(errs, fmt.Errorf("num_states must be at least 2, got %d", s.NumStates))
	}
	if s.PrimordialSoupRadius < 0 {
		errs = append(errs, fmt.Errorf("primordial_soup_radius must not be negative, got %d", s.PrimordialSoupRadius))
	}
	if s.NumIterations < 0 {
		errs = append(errs, fmt.Errorf("num_iterations must not be negative, got %d", s.NumIterations))
	}
	if s.NumOutputSnowflakes < 0 {
		errs = append(errs, fmt.Errorf("num_output_snowflakes must not be negative, got %d", s.NumOutputSnowflakes))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	probability("primordial_soup_density", s.PrimordialSoupDensity)
	probability("state_table_density", s.StateTableDensity)
	probability("score_params.min_density", p.MinDensity)
	probability("score_params.max_density", p.MaxDensity)
	if p.MinDensity > p.MaxDensity {
		errs = append(errs, fmt.Errorf("score_params.min_density %g exceeds max_density %g", p.MinDensity, p.MaxDensity))
	}
	if p.MinRadius > p.MaxRadius {
		errs = append(errs, fmt.Errorf("score_params.min_radius %d exceeds max_radius %d", p.MinRadius, p.MaxRadius))
	}
	if c.Telemetry.HallOfFameSize < 0 {
		errs = append(errs, fmt.Errorf("telemetry.hall_of_fame_size must not be negative, got %d", c.Telemetry.HallOfFameSize))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
