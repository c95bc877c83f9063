// Package config loads and validates blackbox configuration via viper.
// Settings come from config.yaml (searched in the XDG config directory and
// the working directory), overridden by BLACKBOX_* environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete blackbox configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Report  ReportConfig  `mapstructure:"report"`
	Console ConsoleConfig `mapstructure:"console"`
}

// LogConfig controls the rolling log store
type LogConfig struct {
	// Path is the log file location (default: <config dir>/diagnostics.log)
	Path string `mapstructure:"path"`
	// MaxSizeKB is the hard cap on the log file size in kilobytes
	MaxSizeKB int `mapstructure:"max_size_kb"`
	// TrimBatchKB is how far below the cap a trim cuts, in kilobytes
	TrimBatchKB int `mapstructure:"trim_batch_kb"`
	// DiskFloorMB is the free-space floor in megabytes; appends are dropped
	// below it
	DiskFloorMB int `mapstructure:"disk_floor_mb"`
}

// ReportConfig controls report compilation
type ReportConfig struct {
	// OutputDir is where saved reports land (default: current directory)
	OutputDir string `mapstructure:"output_dir"`
	// Redact is a list of regular expressions blanked from report chapters
	Redact []string `mapstructure:"redact"`
}

// ConsoleConfig controls the stdout/stderr tap
type ConsoleConfig struct {
	// Tap mirrors process console output into the log when true
	Tap bool `mapstructure:"tap"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Path:        filepath.Join(ConfigDir(), "diagnostics.log"),
			MaxSizeKB:   2048,
			TrimBatchKB: 100,
			DiskFloorMB: 500,
		},
		Report: ReportConfig{
			OutputDir: ".",
		},
		Console: ConsoleConfig{
			Tap: true,
		},
	}
}

// MaxSize returns the log cap in bytes.
func (c *LogConfig) MaxSize() int64 { return int64(c.MaxSizeKB) * 1024 }

// TrimBatch returns the trim hysteresis band in bytes.
func (c *LogConfig) TrimBatch() int64 { return int64(c.TrimBatchKB) * 1024 }

// DiskFloor returns the free-space floor in bytes.
func (c *LogConfig) DiskFloor() int64 { return int64(c.DiskFloorMB) * 1024 * 1024 }

// SetDefaults registers default values with viper so they apply even
// without a config file.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.max_size_kb", defaults.Log.MaxSizeKB)
	viper.SetDefault("log.trim_batch_kb", defaults.Log.TrimBatchKB)
	viper.SetDefault("log.disk_floor_mb", defaults.Log.DiskFloorMB)

	viper.SetDefault("report.output_dir", defaults.Report.OutputDir)
	viper.SetDefault("report.redact", defaults.Report.Redact)

	viper.SetDefault("console.tap", defaults.Console.Tap)
}

// Load unmarshals the current viper state into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ConfigDir returns the directory for blackbox configuration and state.
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blackbox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blackbox"
	}
	return filepath.Join(home, ".config", "blackbox")
}
