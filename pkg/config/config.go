// Package config loads server configuration from a YAML file, falling back
// to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the server configuration file.
type Config struct {
	Name           string   `yaml:"name"`
	Version        string   `yaml:"version"`
	LogLevel       string   `yaml:"log_level"`
	RequestTimeout Duration `yaml:"request_timeout"`
	MaxConcurrency int64    `yaml:"max_concurrency"`
	MetricsAddr    string   `yaml:"metrics_addr,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Name:           "mcp-server",
		Version:        "0.1.0",
		LogLevel:       "info",
		RequestTimeout: Duration(30 * time.Second),
		MaxConcurrency: 16,
	}
}

// Load reads the config from path. A missing file yields the defaults;
// a malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("config: request_timeout must be positive")
	}
	if cfg.MaxConcurrency <= 0 {
		return nil, fmt.Errorf("config: max_concurrency must be positive")
	}

	return cfg, nil
}
