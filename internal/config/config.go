package config

import (
	"os"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddress    = ":5000"
	DefaultCacheWindowMs    = 500
	DefaultSampleIntervalMs = 100
	DefaultCommandTimeoutMs = 2000
	DefaultLogLevel         = "info"
	DefaultVcgencmdPath     = "vcgencmd"
	DefaultHwmonPath        = "/sys/class/hwmon"
	DefaultThermalPath      = "/sys/class/thermal"
	DefaultCPUFreqPath      = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
)

type Config struct {
	ListenAddress    string `mapstructure:"listen_address"`
	CacheWindowMs    int    `mapstructure:"cache_window_ms"`
	SampleIntervalMs int    `mapstructure:"sample_interval_ms"`
	CommandTimeoutMs int    `mapstructure:"command_timeout_ms"`
	LogLevel         string `mapstructure:"log_level"`
	VcgencmdPath     string `mapstructure:"vcgencmd_path"`
	HwmonPath        string `mapstructure:"hwmon_path"`
	ThermalPath      string `mapstructure:"thermal_path"`
	CPUFreqPath      string `mapstructure:"cpufreq_path"`
}

// CacheWindow returns the snapshot cache validity window
func (c *Config) CacheWindow() time.Duration {
	return time.Duration(c.CacheWindowMs) * time.Millisecond
}

// SampleInterval returns the delay between the two counter reads of a
// throughput measurement
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

// CommandTimeout returns the upper bound on external command runtime
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_address", DefaultListenAddress)
	v.SetDefault("cache_window_ms", DefaultCacheWindowMs)
	v.SetDefault("sample_interval_ms", DefaultSampleIntervalMs)
	v.SetDefault("command_timeout_ms", DefaultCommandTimeoutMs)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("vcgencmd_path", DefaultVcgencmdPath)
	v.SetDefault("hwmon_path", DefaultHwmonPath)
	v.SetDefault("thermal_path", DefaultThermalPath)
	v.SetDefault("cpufreq_path", DefaultCPUFreqPath)

	flags := pflag.NewFlagSet("pimon", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.String("listen-address", DefaultListenAddress, "Address for the HTTP server to listen on")
	flags.Int("cache-window-ms", DefaultCacheWindowMs, "Snapshot cache validity window in milliseconds")
	flags.Int("sample-interval-ms", DefaultSampleIntervalMs, "Throughput sampling interval in milliseconds")
	flags.Int("command-timeout-ms", DefaultCommandTimeoutMs, "External command timeout in milliseconds")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"listen_address":     "listen-address",
		"cache_window_ms":    "cache-window-ms",
		"sample_interval_ms": "sample-interval-ms",
		"command_timeout_ms": "command-timeout-ms",
		"log_level":          "log-level",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errors.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix("PIMON")
	v.AutomaticEnv()

	if path := os.Getenv("PIMON_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pimon")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.CacheWindowMs <= 0 || c.SampleIntervalMs <= 0 || c.CommandTimeoutMs <= 0 {
		return errors.New(errors.ErrInvalidInterval)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errors.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
