package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fitsync/internal/platform"
)

func newSyncCmd() *cobra.Command {
	var (
		directions []string
		batchSize  int
		modeFlag   string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the sync pipeline for one or more directions",
		Long: `Runs RunSync sequentially for each --direction, in incremental
(top-up from the last sync point) or migration (historical backfill,
resumed from a persisted cursor) mode.

Examples:
  fitsync sync --direction strava_to_garmin
  fitsync sync --direction strava_to_onedrive --mode migration --batch 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), directions, batchSize, modeFlag)
		},
	}

	cmd.Flags().StringSliceVar(&directions, "direction", nil, "direction to sync, e.g. strava_to_garmin (repeatable)")
	cmd.Flags().IntVar(&batchSize, "batch", 50, "maximum activities to list per direction per call")
	cmd.Flags().StringVar(&modeFlag, "mode", "incremental", "sync mode: incremental or migration")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func runSync(ctx context.Context, directions []string, batchSize int, modeFlag string) error {
	var mode platform.Mode
	switch modeFlag {
	case "incremental", "":
		mode = platform.Incremental
	case "migration":
		mode = platform.Migration
	default:
		return fmt.Errorf("unknown --mode %q, want incremental or migration", modeFlag)
	}

	runID := uuid.New().String()
	runLogger := logger.With("run_id", runID, "mode", mode.String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		runLogger.Warn("received interrupt, cancelling after current activity")
		cancel()
		<-sigCh
		runLogger.Error("received second interrupt, forcing exit")
		os.Exit(1)
	}()

	runLogger.Info("starting sync run", "directions", directions, "batch_size", batchSize)
	results := orch.RunSync(ctx, directions, batchSize, mode)

	var failed bool
	for _, r := range results {
		if r.Error != "" {
			failed = true
			runLogger.Error("direction failed", "direction", r.Direction, "error", r.Error)
			continue
		}
		runLogger.Info("direction complete", "direction", r.Direction,
			"processed", r.Processed, "success", r.Success, "failed", r.Failed, "skipped", r.Skipped)
		fmt.Printf("%s: processed=%d success=%d failed=%d skipped=%d\n",
			r.Direction, r.Processed, r.Success, r.Failed, r.Skipped)
	}
	if failed {
		return fmt.Errorf("one or more directions failed, see logs")
	}
	return nil
}
