// Init command for the lector CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and the local database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return sysErr(fmt.Errorf("init: %w", err))
		}
		if err := ensureConfigDir(configDir); err != nil {
			return sysErr(fmt.Errorf("init: %w", err))
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return sysErr(fmt.Errorf("init: %w", err))
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("init: %w", err))
		}
		defer backend.Detach()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "lector initialized")
		fmt.Fprintln(out, "  config:  ", configDir)
		fmt.Fprintln(out, "  database:", backend.Path())
		return nil
	},
}
