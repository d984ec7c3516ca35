// Reset command: clears the local database.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all sessions, items, products and settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return userErr(errors.New("reset: this deletes all local data; rerun with --yes"))
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("reset: %w", err))
		}
		defer backend.Detach()

		if err := backend.Reset(); err != nil {
			return sysErr(fmt.Errorf("reset: %w", err))
		}
		log.Warn("local database reset")
		fmt.Fprintln(cmd.OutOrStdout(), "All local data deleted")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deleting all local data")
}
