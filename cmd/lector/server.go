// Server settings commands: the back-office connection used by sync.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/internal/catalogsync"
	"github.com/mesh-intelligence/lector/internal/remote"
	"github.com/mesh-intelligence/lector/pkg/types"
)

var serverFlags types.ServerSettings

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the back-office connection settings",
}

var serverSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the connection settings",
	Long: `Save the settings the back-office service uses to reach the product
database. Only the flags given are changed; the rest keep their saved value.

Example:
  lector server set --server sql.local --port 1433 --database ventas \
    --user lector --password secret --trust-server-certificate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("server set: %w", err))
		}
		defer backend.Detach()

		settings, err := catalogsync.LoadSettings(backend)
		if errors.Is(err, catalogsync.ErrNoSettings) {
			settings = &types.ServerSettings{}
		} else if err != nil {
			return sysErr(fmt.Errorf("server set: %w", err))
		}

		f := cmd.Flags()
		if f.Changed("server") {
			settings.Server = serverFlags.Server
		}
		if f.Changed("port") {
			settings.Port = serverFlags.Port
		}
		if f.Changed("database") {
			settings.Database = serverFlags.Database
		}
		if f.Changed("user") {
			settings.User = serverFlags.User
		}
		if f.Changed("password") {
			settings.Password = serverFlags.Password
		}
		if f.Changed("trust-server-certificate") {
			settings.TrustServerCertificate = serverFlags.TrustServerCertificate
		}

		if err := catalogsync.SaveSettings(backend, *settings); err != nil {
			return sysErr(fmt.Errorf("server set: %w", err))
		}
		log.Info("server settings saved")
		fmt.Fprintln(cmd.OutOrStdout(), "Server settings saved")
		return nil
	},
}

var serverShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved connection settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("server show: %w", err))
		}
		defer backend.Detach()

		settings, err := catalogsync.LoadSettings(backend)
		if err != nil {
			return fmt.Errorf("server show: %w", err)
		}
		masked := *settings
		if masked.Password != "" {
			masked.Password = strings.Repeat("*", 8)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, masked)
		}
		fmt.Fprintf(out, "Server:    %s\n", masked.Server)
		fmt.Fprintf(out, "Port:      %s\n", masked.Port)
		fmt.Fprintf(out, "Database:  %s\n", masked.Database)
		fmt.Fprintf(out, "User:      %s\n", masked.User)
		fmt.Fprintf(out, "Password:  %s\n", masked.Password)
		fmt.Fprintf(out, "Trust cert: %t\n", masked.TrustServerCertificate)
		fmt.Fprintf(out, "API URL:   %s\n", cfg.GetString(cfgKeyAPIURL))
		return nil
	},
}

var serverTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Ask the back office to open a connection with the saved settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !online() {
			return sysErr(fmt.Errorf("server test: %w", remote.ErrUnreachable))
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("server test: %w", err))
		}
		defer backend.Detach()

		settings, err := catalogsync.LoadSettings(backend)
		if err != nil {
			return fmt.Errorf("server test: %w", err)
		}

		msg, err := newRemoteClient().TestConnection(cmd.Context(), *settings)
		if err != nil {
			return sysErr(fmt.Errorf("server test: %w", err))
		}
		if msg == "" {
			msg = "connection ok"
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	f := serverSetCmd.Flags()
	f.StringVar(&serverFlags.Server, "server", "", "database server host")
	f.StringVar(&serverFlags.Port, "port", "", "database server port")
	f.StringVar(&serverFlags.Database, "database", "", "database name")
	f.StringVar(&serverFlags.User, "user", "", "database user")
	f.StringVar(&serverFlags.Password, "password", "", "database password")
	f.BoolVar(&serverFlags.TrustServerCertificate, "trust-server-certificate", false, "accept the server certificate without verification")

	serverCmd.AddCommand(serverSetCmd)
	serverCmd.AddCommand(serverShowCmd)
	serverCmd.AddCommand(serverTestCmd)
}

// newRemoteClient returns a client for the configured api_url.
func newRemoteClient() *remote.Client {
	return remote.New(cfg.GetString(cfgKeyAPIURL), remote.WithLogger(log))
}
