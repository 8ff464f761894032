package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "commsdesk",
		Short: "Employer communications panel API",
		Long: `commsdesk serves the employer mailbox: tabbed and searchable message
feeds, pin/read/sign-off/delete actions, compose with scheduling, and a
websocket stream for swipe gestures and notifications.

Configuration comes from the environment (and .env if present).
Running with no subcommand is the same as "commsdesk serve".`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}
