// Package config describes a simulation run: which elements to model,
// where their atomic-data tables live, and how the charge states are
// initialized.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NEI-modeling/SunNEI/element"
)

const (
	DefaultDataDir     = "AtomicData"
	DefaultTemperature = 1e6 // K, typical coronal start
	DefaultSteps       = 100
)

type Config struct {
	// Elements to model, by symbol.
	Elements []string `yaml:"elements"`
	// DataDir holds the per-element eigen-table files.
	DataDir string `yaml:"data_dir"`
	// StartTemperature in kelvin. Zero starts every element neutral
	// instead of in ionization equilibrium.
	StartTemperature float64 `yaml:"start_temperature"`
	// Steps the time advance will take.
	Steps int `yaml:"steps"`
}

// Default returns a run over the twelve most abundant solar elements.
func Default() *Config {
	return &Config{
		Elements:         element.DefaultElements(),
		DataDir:          DefaultDataDir,
		StartTemperature: DefaultTemperature,
		Steps:            DefaultSteps,
	}
}

// Load reads a YAML run configuration. Fields absent from the file
// keep their defaults; the result is validated before return.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (c *Config) Validate() error {
	if len(c.Elements) == 0 {
		return fmt.Errorf("config: no elements requested")
	}
	for _, sym := range c.Elements {
		if !element.IsKnown(sym) {
			return fmt.Errorf("config: element %q: %w", sym, element.ErrUnknownElement)
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must be set")
	}
	if c.StartTemperature < 0 {
		return fmt.Errorf("config: start_temperature must be non-negative, got %g", c.StartTemperature)
	}
	if c.Steps < 1 {
		return fmt.Errorf("config: steps must be at least 1, got %d", c.Steps)
	}
	return nil
}
