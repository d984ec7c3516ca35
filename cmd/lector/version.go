package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/pkg/lector"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lector version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "lector", lector.Version)
	},
}
