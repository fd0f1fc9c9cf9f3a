package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.Equal(t, "car_petrol", cfg.Baseline.DefaultCommuteMode)
	assert.Equal(t, "meat_mixed_meal", cfg.Baseline.DefaultDietType)
	assert.InDelta(t, 48520.3, cfg.Seed.TotalCO2SavedKg, 1e-9)
	assert.Equal(t, int64(8942), cfg.Seed.TotalActionsLogged)
	assert.Equal(t, int64(847), cfg.Seed.TotalUsers)
	assert.Empty(t, cfg.Data.SQLitePath)

	require.NoError(t, cfg.validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
logging:
  level: debug
  format: json
data:
  sqlite_path: /tmp/cb.db
baseline:
  default_commute_mode: bus
seed:
  total_users: 12
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/cb.db", cfg.Data.SQLitePath)
	assert.Equal(t, "bus", cfg.Baseline.DefaultCommuteMode)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "meat_mixed_meal", cfg.Baseline.DefaultDietType)
	assert.Equal(t, int64(12), cfg.Seed.TotalUsers)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvListenAddr, ":7070")
	t.Setenv(EnvDBPath, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "console")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/env.db", cfg.Data.SQLitePath)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9091\"\n"), 0600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9091", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
		{
			name:    "addr without numeric port",
			mutate:  func(c *Config) { c.Server.Addr = "localhost" },
			wantErr: "port",
		},
		{
			name:    "empty commute default",
			mutate:  func(c *Config) { c.Baseline.DefaultCommuteMode = "" },
			wantErr: "baseline defaults",
		},
		{
			name:    "negative seed counter",
			mutate:  func(c *Config) { c.Seed.TotalUsers = -1 },
			wantErr: "seed counters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
