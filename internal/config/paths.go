package config

import (
	"os"
	"path/filepath"
)

const appName = "fitsync"

// DefaultConfigDir returns the XDG-compliant config directory, following
// onedrive-go's DefaultConfigDir convention (internal/config/paths.go).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".config", appName)
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// defaultDataDir is where the registry database lives by default.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultDBPath returns the full path to the default registry database.
func DefaultDBPath() string {
	dir := defaultDataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "registry.db")
}

// defaultCacheRoot is where downloaded activity files are cached by default.
func defaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(home, ".cache", appName)
}
