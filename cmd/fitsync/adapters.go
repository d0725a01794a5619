package main

import (
	"fitsync/internal/config"
	"fitsync/internal/platform"
)

// wireAdapters registers one reference in-memory adapter per enabled
// platform in cfg, as both a source and a target. Real OAuth/cookie-
// backed adapters for Strava, Garmin, OneDrive and friends are external
// collaborators this module only defines the contract for (spec.md §1);
// platform.MemAdapter is the deterministic stand-in that lets `fitsync
// sync` actually run end to end against whatever directions are
// configured.
func wireAdapters(cfg *config.Config) *platform.Registry {
	reg := platform.NewRegistry()
	for name, pc := range cfg.Platforms {
		if !pc.Enabled {
			continue
		}
		adapter := platform.NewMemAdapter(name)
		reg.RegisterSource(name, adapter)
		reg.RegisterTarget(name, adapter)
	}
	return reg
}
