// Package config loads the application configuration: a YAML file with
// typed sections, overridden by environment variables. Every field has
// a working default so the binary runs with no config at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides. A .env file is loaded by the serve
// command before these are read.
const (
	EnvConfigPath = "CARBONBUDDY_CONFIG"
	EnvListenAddr = "CARBONBUDDY_ADDR"
	EnvDBPath     = "CARBONBUDDY_DB"
	EnvLogLevel   = "CARBONBUDDY_LOG_LEVEL"
	EnvLogFormat  = "CARBONBUDDY_LOG_FORMAT"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Data     DataConfig     `yaml:"data"`
	Baseline BaselineConfig `yaml:"baseline"`
	Seed     SeedConfig     `yaml:"seed"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DataConfig points at the reference dataset and the durable store.
type DataConfig struct {
	// FactorsPath is an external emission-factor dataset. Empty uses
	// the dataset embedded in the binary.
	FactorsPath string `yaml:"factors_path"`

	// SQLitePath enables the durable store. Empty keeps everything in
	// memory for the process lifetime.
	SQLitePath string `yaml:"sqlite_path"`
}

// BaselineConfig holds the explicit fallback type keys used when a
// profile carries an unknown commute or diet key.
type BaselineConfig struct {
	DefaultCommuteMode string `yaml:"default_commute_mode"`
	DefaultDietType    string `yaml:"default_diet_type"`
}

// SeedConfig seeds the global counters on first start.
type SeedConfig struct {
	TotalCO2SavedKg    float64 `yaml:"total_co2_saved_kg"`
	TotalActionsLogged int64   `yaml:"total_actions_logged"`
	TotalUsers         int64   `yaml:"total_users"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Baseline: BaselineConfig{
			DefaultCommuteMode: "car_petrol",
			DefaultDietType:    "meat_mixed_meal",
		},
		Seed: SeedConfig{
			TotalCO2SavedKg:    48520.3,
			TotalActionsLogged: 8942,
			TotalUsers:         847,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (or $CARBONBUDDY_CONFIG when path is empty; a missing file is not an
// error), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Data.SQLitePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Baseline.DefaultCommuteMode == "" || c.Baseline.DefaultDietType == "" {
		return fmt.Errorf("baseline defaults must not be empty")
	}
	if c.Seed.TotalCO2SavedKg < 0 || c.Seed.TotalActionsLogged < 0 || c.Seed.TotalUsers < 0 {
		return fmt.Errorf("seed counters must not be negative")
	}
	if _, err := strconv.Atoi(portOf(c.Server.Addr)); err != nil {
		return fmt.Errorf("server.addr %q has no numeric port", c.Server.Addr)
	}
	return nil
}

// portOf extracts the port from a host:port address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return ""
}
