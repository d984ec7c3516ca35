// Sync and status commands.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/internal/catalogsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the local catalog with the back-office product list",
	Long: `Fetch every enabled product from the back office and replace the local
catalog with it. The catalog is only replaced when the whole list was
received and stored; on any failure the previous catalog stays in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("sync: %w", err))
		}
		defer backend.Detach()

		engine := catalogsync.New(backend, catalogsync.Env{Online: online()}, log)
		n, err := engine.SyncFrom(cmd.Context(), newRemoteClient())
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]int{"products": n})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d product(s)\n", n)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog size, last sync and session totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("status: %w", err))
		}
		defer backend.Detach()

		st, err := catalogsync.New(backend, catalogsync.Env{Online: online()}, log).Status()
		if err != nil {
			return sysErr(fmt.Errorf("status: %w", err))
		}
		sessions, err := backend.ListSessions()
		if err != nil {
			return sysErr(fmt.Errorf("status: %w", err))
		}
		items := 0
		for _, s := range sessions {
			items += s.TotalItems
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]any{
				"catalog":  st,
				"sessions": len(sessions),
				"items":    items,
				"database": backend.Path(),
			})
		}

		lastSync := "never"
		if st.Synced {
			lastSync = st.LastSync.Local().Format(time.DateTime)
		}
		network := "online"
		if !st.Online {
			network = "offline"
		}
		fmt.Fprintf(out, "Products:  %d\n", st.Products)
		fmt.Fprintf(out, "Last sync: %s\n", lastSync)
		fmt.Fprintf(out, "Sessions:  %d (%d item(s))\n", len(sessions), items)
		fmt.Fprintf(out, "Network:   %s\n", network)
		fmt.Fprintf(out, "Database:  %s\n", backend.Path())
		return nil
	},
}
