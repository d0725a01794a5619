package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file into a Config seeded with
// defaults, then overlays secrets from the environment, matching the
// "defaults -> file -> env" layering onedrive-go's Load/ResolveDrive
// pipeline uses.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("loading config file", "path", path)

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads path if it exists, otherwise returns a
// Config populated with defaults plus any environment overrides —
// supporting a zero-config first run the way onedrive-go's
// LoadOrDefault does.
func LoadOrDefault(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("config file not found, using defaults", "path", path)
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path, logger)
}
