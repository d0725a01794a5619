package config

import (
	"os"
	"strings"
)

// ApplyEnvOverrides overlays per-platform secrets from
// FITSYNC_<PLATFORM>_<FIELD> environment variables, keeping credentials
// out of the on-disk TOML file the way aimharder-sync's config loader
// does. Platform names are upper-cased for the env var lookup; e.g.
// "garmin_cn" becomes FITSYNC_GARMIN_CN_CLIENT_ID.
func ApplyEnvOverrides(cfg *Config) {
	for name, pc := range cfg.Platforms {
		prefix := "FITSYNC_" + strings.ToUpper(name) + "_"
		if v := os.Getenv(prefix + "CLIENT_ID"); v != "" {
			pc.ClientID = v
		}
		if v := os.Getenv(prefix + "CLIENT_SECRET"); v != "" {
			pc.ClientSecret = v
		}
		if v := os.Getenv(prefix + "REFRESH_TOKEN"); v != "" {
			pc.RefreshToken = v
		}
		cfg.Platforms[name] = pc
	}
}
