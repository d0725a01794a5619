package config

import (
	"fmt"
	"strings"
)

// Validate checks structural invariants on a loaded Config: every enabled
// platform has credentials, min_confidence is in [0,1], and the cache
// root is set.
func Validate(cfg *Config) error {
	for name, pc := range cfg.Platforms {
		if !pc.Enabled {
			continue
		}
		if pc.ClientID == "" {
			return fmt.Errorf("platform %q is enabled but has no client id (set FITSYNC_%s_CLIENT_ID)", name, strings.ToUpper(name))
		}
		if pc.ClientSecret == "" {
			return fmt.Errorf("platform %q is enabled but has no client secret (set FITSYNC_%s_CLIENT_SECRET)", name, strings.ToUpper(name))
		}
	}

	if cfg.Sync.MinConfidence < 0 || cfg.Sync.MinConfidence > 1 {
		return fmt.Errorf("sync.min_confidence must be in [0,1], got %v", cfg.Sync.MinConfidence)
	}
	if cfg.Cache.Root == "" {
		return fmt.Errorf("cache.root must not be empty")
	}

	return nil
}
