package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRuleCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rule",
		Short: "Manage per-direction sync rules",
	}
	root.AddCommand(newRuleSetCmd())
	return root
}

func newRuleSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <source> <target> <true|false>",
		Short: "Enable or disable syncing from source to target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			enabled, err := strconv.ParseBool(args[2])
			if err != nil {
				return fmt.Errorf("invalid enabled value %q, want true or false", args[2])
			}
			if err := orch.SetRule(cmd.Context(), source, target, enabled); err != nil {
				return fmt.Errorf("setting rule: %w", err)
			}
			fmt.Printf("%s_to_%s: enabled=%v\n", source, target, enabled)
			return nil
		},
	}
}
