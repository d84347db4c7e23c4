// Package config loads dashboard settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config holds all dashboard settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Controls ControlsConfig `yaml:"controls"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ShutdownTimeout   string `yaml:"shutdown_timeout"`
}

// DatasetConfig selects where records are loaded from at startup.
type DatasetConfig struct {
	// Source is a path or URL: a CSV file, embedded:, sqlite://, postgres:// or s3://
	Source string `yaml:"source"`

	// Table is the SQL table read by database sources
	Table string `yaml:"table"`

	S3 S3Config `yaml:"s3"`
}

// S3Config configures the s3:// source. Credentials come from the usual AWS chain.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`   // Optional, for S3-compatible stores
	PathStyle bool   `yaml:"path_style"` // Required by most S3-compatible stores
}

// ControlsConfig bounds the sidebar controls.
type ControlsConfig struct {
	MassMin     float64  `yaml:"mass_min"`
	MassMax     float64  `yaml:"mass_max"`
	MassStep    float64  `yaml:"mass_step"`
	MassDefault float64  `yaml:"mass_default"`
	Species     []string `yaml:"species"` // Empty means every species in the dataset
}

// SessionsConfig controls idle session cleanup.
type SessionsConfig struct {
	TTL          string `yaml:"ttl"`
	ReapInterval string `yaml:"reap_interval"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ShutdownTimeout:   "10s",
		},
		Dataset: DatasetConfig{
			Source: "embedded:",
			Table:  "penguins",
		},
		Controls: ControlsConfig{
			MassMin:     2000,
			MassMax:     6000,
			MassStep:    1,
			MassDefault: 6000,
		},
		Sessions: SessionsConfig{
			TTL:          "30m",
			ReapInterval: "1m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// An empty or missing path yields the defaults. Environment variables
// override file values in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DASHBOARD_DATASET"); v != "" {
		c.Dataset.Source = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DASHBOARD_SESSION_TTL"); v != "" {
		c.Sessions.TTL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Dataset.S3.Region == "" {
		c.Dataset.S3.Region = v
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	durations := []struct {
		name, value string
	}{
		{"server.read_header_timeout", c.Server.ReadHeaderTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"sessions.ttl", c.Sessions.TTL},
		{"sessions.reap_interval", c.Sessions.ReapInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, d.name)
		}
	}

	ctl := c.Controls
	if ctl.MassMin >= ctl.MassMax {
		return fmt.Errorf("%w: controls.mass_min (%g) must be below mass_max (%g)", ErrInvalid, ctl.MassMin, ctl.MassMax)
	}
	if ctl.MassStep <= 0 {
		return fmt.Errorf("%w: controls.mass_step must be positive", ErrInvalid)
	}
	if ctl.MassDefault < ctl.MassMin || ctl.MassDefault > ctl.MassMax {
		return fmt.Errorf("%w: controls.mass_default (%g) outside [%g, %g]", ErrInvalid, ctl.MassDefault, ctl.MassMin, ctl.MassMax)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// GetReadHeaderTimeout returns the read header timeout as a duration.
func (c *Config) GetReadHeaderTimeout() time.Duration {
	return parseDuration(c.Server.ReadHeaderTimeout, 5*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionTTL returns the idle session lifetime as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Sessions.TTL, 30*time.Minute)
}

// GetReapInterval returns how often idle sessions are swept.
func (c *Config) GetReapInterval() time.Duration {
	return parseDuration(c.Sessions.ReapInterval, time.Minute)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
