// Package config loads the reasoner configuration: engine settings, the
// result store location, and a catalog of ontology documents the CLI can
// run against.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tableau/pkg/tableau/internalerr"
)

// Config is the top-level configuration file.
type Config struct {
	Reasoner   Reasoner          `yaml:"reasoner"`
	Store      Store             `yaml:"store"`
	Ontologies map[string]string `yaml:"ontologies"`
}

// Reasoner holds engine settings.
type Reasoner struct {
	// Workers bounds classification parallelism; zero means one per CPU.
	Workers int `yaml:"workers"`
	// TimeoutSeconds bounds one reasoning call; zero means no limit.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the configured per-call limit.
func (r Reasoner) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Store selects where results are persisted.
type Store struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: Store{Driver: "memory"},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Reasoner.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", internalerr.ErrInvalidConfig)
	}
	if c.Reasoner.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout must not be negative", internalerr.ErrInvalidConfig)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("%w: sqlite store needs a path", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, c.Store.Driver)
	}
	for name, path := range c.Ontologies {
		if path == "" {
			return fmt.Errorf("%w: ontology %q has no path", internalerr.ErrInvalidConfig, name)
		}
	}
	return nil
}
