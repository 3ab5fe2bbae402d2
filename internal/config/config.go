// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Receiver ReceiverConfig `yaml:"receiver"`
	Poll     PollConfig     `yaml:"poll"`
	Inputs   []InputConfig  `yaml:"inputs"`
	HTTP     HTTPConfig     `yaml:"http"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ---- RECEIVER ----

type ReceiverConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int `yaml:"read_timeout_ms"`
	ProbeTimeoutMs   int `yaml:"probe_timeout_ms"`
	RetryIntervalMs  int `yaml:"retry_interval_ms"`
}

// ---- POLL ----

type PollConfig struct {
	StartupIntervalMs int `yaml:"startup_interval_ms"`
	OnIntervalMs      int `yaml:"on_interval_ms"`
	OffIntervalMs     int `yaml:"off_interval_ms"`
	StartupPolls      int `yaml:"startup_polls"`
	MinSpacingMs      int `yaml:"min_spacing_ms"`
	PowerOnWindowMs   int `yaml:"power_on_window_ms"`
}

// ---- INPUT ALIASES ----

type InputConfig struct {
	// Physical is the device input name (BD, CD, STB, ...).
	Physical string `yaml:"physical"`
	// Alias is the user-facing name shown and accepted instead.
	Alias string `yaml:"alias"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string     `yaml:"level"`
	Format string     `yaml:"format"`
	File   FileConfig `yaml:"file"`
}

type FileConfig struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads and decodes a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// InputAliases returns the alias→physical map the driver consumes.
// MUST be called only after Validate().
func (c *Config) InputAliases() map[string]string {
	if len(c.Inputs) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Inputs))
	for _, in := range c.Inputs {
		if in.Alias != "" {
			m[in.Alias] = in.Physical
		}
	}
	return m
}
