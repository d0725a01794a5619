package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fitsync/internal/registry"
)

func newStatusCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print registry statistics: per-platform activity counts, sync status histogram, last-sync cursors, cache size",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := orch.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching status: %w", err)
			}
			if formatFlag == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			printStatusTable(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "text", "output format: text or json")
	return cmd
}

// printStatusTable renders a human-readable summary, generalizing
// ui_utils.py's console summary from the original implementation.
func printStatusTable(stats registry.Statistics) {
	fmt.Println("Activities per platform:")
	for _, platform := range sortedKeys(stats.ActivitiesPerPlatform) {
		fmt.Printf("  %-20s %d\n", platform, stats.ActivitiesPerPlatform[platform])
	}

	fmt.Println("\nSync status by direction:")
	for _, key := range sortedKeys(stats.StatusHistogram) {
		fmt.Printf("  %-40s %d\n", key, stats.StatusHistogram[key])
	}

	fmt.Println("\nLast sync:")
	for _, key := range sortedKeys(stats.LastSync) {
		fmt.Printf("  %-30s %s\n", key, stats.LastSync[key])
	}

	fmt.Printf("\nCache entries: %d\n", stats.CacheRowCount)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
