package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/pimon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	configContent := []byte(`
listen_address = ":8080"
cache_window_ms = 250
sample_interval_ms = 50
command_timeout_ms = 1000
log_level = "debug"
vcgencmd_path = "/usr/bin/vcgencmd"
hwmon_path = "/tmp/hwmon"
`)
	configPath := filepath.Join(t.TempDir(), "pimon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PIMON_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress, "Expected ListenAddress :8080")
	assert.Equal(t, 250, cfg.CacheWindowMs, "Expected CacheWindowMs 250")
	assert.Equal(t, 50, cfg.SampleIntervalMs, "Expected SampleIntervalMs 50")
	assert.Equal(t, 1000, cfg.CommandTimeoutMs, "Expected CommandTimeoutMs 1000")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	assert.Equal(t, "/usr/bin/vcgencmd", cfg.VcgencmdPath, "Expected VcgencmdPath /usr/bin/vcgencmd")
	assert.Equal(t, "/tmp/hwmon", cfg.HwmonPath, "Expected HwmonPath /tmp/hwmon")
	assert.Equal(t, config.DefaultThermalPath, cfg.ThermalPath, "Expected default ThermalPath")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIMON_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultListenAddress, cfg.ListenAddress, "Expected default ListenAddress")
	assert.Equal(t, config.DefaultCacheWindowMs, cfg.CacheWindowMs, "Expected default CacheWindowMs 500")
	assert.Equal(t, config.DefaultSampleIntervalMs, cfg.SampleIntervalMs, "Expected default SampleIntervalMs 100")
	assert.Equal(t, config.DefaultCommandTimeoutMs, cfg.CommandTimeoutMs, "Expected default CommandTimeoutMs 2000")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.Equal(t, config.DefaultHwmonPath, cfg.HwmonPath, "Expected default HwmonPath")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(t.TempDir(), "pimon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PIMON_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(t.TempDir(), "pimon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PIMON_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestInvalidInterval(t *testing.T) {
	configContent := []byte(`
sample_interval_ms = 0
`)
	configPath := filepath.Join(t.TempDir(), "pimon.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("PIMON_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	t.Setenv("PIMON_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 500, int(cfg.CacheWindow().Milliseconds()))
	assert.Equal(t, 100, int(cfg.SampleInterval().Milliseconds()))
	assert.Equal(t, 2000, int(cfg.CommandTimeout().Milliseconds()))
}
