package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete cached activity files older than --days and their registry rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := orch.CleanupCache(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("cleaning up cache: %w", err)
			}
			fmt.Printf("removed %d stale cache entries\n", deleted)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "delete cache entries older than this many days")
	return cmd
}
