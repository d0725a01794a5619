// Command fitsync drives the sync core's public operations surface
// (spec.md §6) from the shell: sync, status, rule toggling, migration
// start overrides, cache cleanup, and adapter session clearing.
// Generalizes aimharder-sync's cmd/main.go and onedrive-go's root.go
// command-tree shape: a rootCmd with a PersistentPreRunE that loads
// config and wires the core once, and one constructor function per
// subcommand.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fitsync/internal/config"
	"fitsync/internal/orchestrator"
	"fitsync/internal/platform"
	"fitsync/internal/ratelimit"
	"fitsync/internal/registry"
)

var (
	cfgFile   string
	logFormat string
	verbose   bool

	cfg      *config.Config
	logger   *slog.Logger
	store    *registry.Store
	governor *ratelimit.Governor
	adapters *platform.Registry
	orch     *orchestrator.Orchestrator
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fitsync",
		Short: "Synchronize workout activities across fitness platforms",
		Long: `fitsync moves recorded workout files (FIT/TCX/GPX) between fitness
platforms (Strava, Garmin Connect, OneDrive, Intervals.icu, and others)
in a configurable set of directions, deduplicating by activity
fingerprint rather than by any one platform's native id.

Configure platforms and thresholds in the TOML config file (default
` + config.DefaultConfigPath() + `), and keep secrets out of it by
exporting FITSYNC_<PLATFORM>_CLIENT_ID / _CLIENT_SECRET / _REFRESH_TOKEN.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "version", "completion":
				return nil
			}
			return setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if store != nil {
				return store.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format: text or json (default: auto-detected from terminal)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddCommand(
		newSyncCmd(),
		newAuthCmd(),
		newStatusCmd(),
		newRuleCmd(),
		newMigrationStartCmd(),
		newCleanupCmd(),
		newSessionCmd(),
		newVersionCmd(),
	)

	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and wires the sync core once per invocation,
// matching the teacher's PersistentPreRunE-loads-config pattern.
func setup(ctx context.Context) error {
	logger = newLogger(logFormat, verbose)

	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loaded, err := config.LoadOrDefault(path, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	store, err = registry.Open(ctx, config.DefaultDBPath(), logger)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}

	governor = ratelimit.New()
	for platformID, limits := range cfg.RateLimits() {
		governor.Register(platformID, limits)
	}

	adapters = wireAdapters(cfg)

	opts := orchestrator.DefaultOptions(cfg.Cache.Root)
	opts.MatcherThresholds = cfg.MatcherThresholds()
	opts.DuplicateWindow = cfg.DuplicateProbeWindow()

	orch, err = orchestrator.New(store, governor, adapters, opts, logger)
	if err != nil {
		return fmt.Errorf("constructing orchestrator: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fitsync version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("fitsync dev")
		},
	}
}
