// Package config loads FitSync's TOML configuration, generalizing
// onedrive-go's internal/config package (BurntSushi/toml, defaults +
// environment-variable secret overlay) to the sync core's knobs:
// per-platform adapter settings, cache root, matcher thresholds, rate
// limits, and migration defaults.
package config

import (
	"time"

	"fitsync/internal/matcher"
	"fitsync/internal/ratelimit"
)

// Config is the root configuration structure, decoded from TOML tables
// named after each field (lower-cased), matching BurntSushi/toml's
// default key-mapping convention.
type Config struct {
	Platforms map[string]PlatformConfig `toml:"platforms"`
	Cache     CacheConfig               `toml:"cache"`
	Sync      SyncConfig                `toml:"sync"`
	RateLimit map[string]RateLimitConfig `toml:"ratelimit"`
	Logging   LoggingConfig             `toml:"logging"`
}

// PlatformConfig holds adapter-level settings for one platform. Secrets
// (ClientID/ClientSecret/RefreshToken) are never read from the TOML file
// itself — they are overlaid from FITSYNC_<PLATFORM>_<FIELD> environment
// variables by ApplyEnvOverrides, the way aimharder-sync keeps credentials
// out of on-disk config.
type PlatformConfig struct {
	Enabled      bool   `toml:"enabled"`
	ClientID     string `toml:"-"`
	ClientSecret string `toml:"-"`
	RefreshToken string `toml:"-"`
	RedirectURL  string `toml:"redirect_url"`
}

// CacheConfig configures the content-addressed File Cache.
type CacheConfig struct {
	Root            string `toml:"root"`
	CleanupAfterDays int   `toml:"cleanup_after_days"`
}

// SyncConfig configures the Matcher thresholds and the duplicate-probe
// radius. MigrationDefaultEarliest is decoded but not read: migration
// mode with no start set begins at window.MigrationEpoch.
type SyncConfig struct {
	TimeToleranceMinutes    int     `toml:"time_tolerance_minutes"`
	DistanceTolerancePercent float64 `toml:"distance_tolerance_percent"`
	DurationTolerancePercent float64 `toml:"duration_tolerance_percent"`
	MinConfidence           float64 `toml:"min_confidence"`
	DuplicateProbeWindowMinutes int `toml:"duplicate_probe_window_minutes"`
	MigrationDefaultEarliest string `toml:"migration_default_earliest"`
}

// RateLimitConfig configures the Governor's per-platform limits.
type RateLimitConfig struct {
	DailyLimit       int `toml:"daily_limit"`
	QuarterHourLimit int `toml:"quarter_hour_limit"`
}

// LoggingConfig holds the [logging] table. The CLI does not read it: its
// logger is built from --log-format, --verbose and FITSYNC_LOG_FORMAT.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text", "json", or "" for auto-detect via isatty
}

// DefaultConfig returns the config-knob defaults spec.md §6 names.
func DefaultConfig() *Config {
	return &Config{
		Platforms: make(map[string]PlatformConfig),
		Cache: CacheConfig{
			Root:             defaultCacheRoot(),
			CleanupAfterDays: 90,
		},
		Sync: SyncConfig{
			TimeToleranceMinutes:        5,
			DistanceTolerancePercent:    5,
			DurationTolerancePercent:    10,
			MinConfidence:               0.7,
			DuplicateProbeWindowMinutes: 60,
			MigrationDefaultEarliest:    "2008-01-01T00:00:00Z",
		},
		RateLimit: map[string]RateLimitConfig{
			"strava": {DailyLimit: 180, QuarterHourLimit: 90},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// MatcherThresholds converts the Sync table into matcher.Thresholds.
func (c *Config) MatcherThresholds() matcher.Thresholds {
	return matcher.Thresholds{
		TimeToleranceMinutes:     float64(c.Sync.TimeToleranceMinutes),
		DistanceTolerancePercent: c.Sync.DistanceTolerancePercent,
		DurationTolerancePercent: c.Sync.DurationTolerancePercent,
		MinConfidence:            c.Sync.MinConfidence,
	}
}

// DuplicateProbeWindow returns the configured duplicate-probe radius as
// a time.Duration, per spec.md §9's open-question decision to expose the
// ±1h default as a config knob.
func (c *Config) DuplicateProbeWindow() time.Duration {
	return time.Duration(c.Sync.DuplicateProbeWindowMinutes) * time.Minute
}

// RateLimits converts the RateLimit table into ratelimit.Limits, keyed
// by platform.
func (c *Config) RateLimits() map[string]ratelimit.Limits {
	out := make(map[string]ratelimit.Limits, len(c.RateLimit))
	for platform, rl := range c.RateLimit {
		out[platform] = ratelimit.Limits{DailyLimit: rl.DailyLimit, QuarterHourLimit: rl.QuarterHourLimit}
	}
	return out
}
