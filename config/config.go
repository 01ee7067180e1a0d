// SPDX-License-Identifier: GPL-2.0-or-later

// Package config handles qmap configuration loading.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Export      ExportConfig      `yaml:"export"`
	Logging     LoggingConfig     `yaml:"logging"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// DataConfig holds where map sources are looked up.
type DataConfig struct {
	BaseDir string `yaml:"base_dir"` // directory containing id1
	Game    string `yaml:"game"`     // mod directory layered over id1
}

// ExportConfig holds the serialization settings.
type ExportConfig struct {
	Format string `yaml:"format"` // proto, json or yaml
	Output string `yaml:"output"` // directory, empty disables export
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DiagnosticsConfig holds informational output switches.
type DiagnosticsConfig struct {
	PointEntities bool `yaml:"point_entities"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			BaseDir: ".",
		},
		Export: ExportConfig{
			Format: "yaml",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults merged with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config from %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config %s", path)
}
