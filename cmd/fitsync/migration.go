package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMigrationStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migration-start <direction> <iso8601>",
		Short: "Override the historical backfill start time for a direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := args[0]
			start, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid timestamp %q, want RFC3339 (e.g. 2015-01-01T00:00:00Z): %w", args[1], err)
			}
			if err := orch.SetMigrationStart(cmd.Context(), direction, start); err != nil {
				return fmt.Errorf("setting migration start: %w", err)
			}
			fmt.Printf("%s: migration start set to %s\n", direction, start.UTC().Format(time.RFC3339))
			return nil
		},
	}
}
