// Package config resolves etlforge settings from etlforge.yaml and the
// environment. Environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "etlforge.yaml"

// Config holds the settings shared by every command.
type Config struct {
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:""`

	// Seed makes generation reproducible. Empty means a random seed.
	Seed string `yaml:"seed" env:"ETLFORGE_SEED" env-default:""`

	// RetryBudget caps draws per unique value; 0 derives it from the value space.
	RetryBudget int `yaml:"retry_budget" env:"ETLFORGE_RETRY_BUDGET" env-default:"0"`

	DefaultRows int    `yaml:"default_rows" env:"ETLFORGE_DEFAULT_ROWS" env-default:"100"`
	MaxErrors   int    `yaml:"max_errors" env:"ETLFORGE_MAX_ERRORS" env-default:"10"`
	LogLevel    string `yaml:"log_level" env:"ETLFORGE_LOG_LEVEL" env-default:"warn"`
}

// Load reads path when it exists and the environment otherwise. An empty
// path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, statErr
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultRows < 0 {
		return fmt.Errorf("default_rows must not be negative, got %d", c.DefaultRows)
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("retry_budget must not be negative, got %d", c.RetryBudget)
	}
	if _, _, err := c.SeedValue(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// SeedValue parses Seed. ok is false when no seed was configured.
func (c *Config) SeedValue() (seed uint64, ok bool, err error) {
	if c.Seed == "" {
		return 0, false, nil
	}
	seed, err = strconv.ParseUint(c.Seed, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("seed must be a non-negative integer, got %q", c.Seed)
	}
	return seed, true, nil
}

// Logger builds the console logger. verbose forces debug level.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.DisableStacktrace = !verbose
	return logConfig.Build()
}
