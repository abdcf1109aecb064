package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config represents the global ~/.studybuddy/config.toml.
type Config struct {
	DefaultProfile string      `toml:"default_profile" env:"STUDYBUDDY_PROFILE"`
	LogLevel       string      `toml:"log_level" env:"STUDYBUDDY_LOG_LEVEL"`
	Match          MatchConfig `toml:"match"`
}

// MatchConfig holds the simulated delays of the Soul Match tool.
type MatchConfig struct {
	MatchDelay   time.Duration `toml:"match_delay" env:"STUDYBUDDY_MATCH_DELAY"`
	OpeningDelay time.Duration `toml:"opening_delay" env:"STUDYBUDDY_OPENING_DELAY"`
	TypingDelay  time.Duration `toml:"typing_delay" env:"STUDYBUDDY_TYPING_DELAY"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Match: MatchConfig{
			MatchDelay:   3 * time.Second,
			OpeningDelay: time.Second,
			TypingDelay:  2 * time.Second,
		},
	}
}

// Load reads config from the given path on top of the defaults.
// Returns nil config and error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve loads the config file if present, falls back to defaults when it is
// missing, then applies STUDYBUDDY_* environment overrides.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks delays and log level.
func (c *Config) Validate() error {
	if c.Match.MatchDelay <= 0 || c.Match.OpeningDelay <= 0 || c.Match.TypingDelay <= 0 {
		return fmt.Errorf("match delays must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
