package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "session",
		Short: "Manage adapter-held sessions",
	}
	root.AddCommand(newSessionClearCmd())
	return root
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <adapter>",
		Short: "Clear a cached session/cookie for one adapter, per ClearAdapterSession",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := orch.ClearAdapterSession(args[0]); err != nil {
				return err
			}
			fmt.Printf("%s: session cleared\n", args[0])
			return nil
		},
	}
}
