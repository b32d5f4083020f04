// Package config handles meshconv configuration loading and management.
package config

import (
	"runtime"
	"time"
)

// Config holds all meshconv settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Batch   BatchConfig   `yaml:"batch"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds settings for a single conversion.
type ConvertConfig struct {
	Format           string `yaml:"format"` // Output writer: binary, json or glb
	WarningsAsErrors bool   `yaml:"warnings_as_errors"`
	Verbose          bool   `yaml:"verbose"`
}

// BatchConfig holds settings for converting many files.
type BatchConfig struct {
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before a changed file is converted
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Format: "binary",
		},
		Batch: BatchConfig{
			Workers:   runtime.NumCPU(),
			OutputDir: "out",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
