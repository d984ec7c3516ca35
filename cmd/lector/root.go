// Root command for the lector CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/internal/paths"
	"github.com/mesh-intelligence/lector/pkg/lector"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagOffline   bool
	flagVerbose   bool
)

// cfg and log are set by PersistentPreRunE for all subcommands.
var (
	cfg *viper.Viper
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lector",
	Short: "Offline inventory counting with a laser barcode scanner",
	Long: `lector records inventory counts captured by a laser barcode scanner in
a local database, syncs the product catalog from the back office when the
network is available, and exports counted sessions as import files.`,
	Version:       lector.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return sysErr(err)
		}

		v, err := loadConfig(configDir)
		if err != nil {
			return sysErr(err)
		}
		cfg = v

		l, err := logger.NewZapLogger(loggerConfig(v, flagVerbose))
		if err != nil {
			return userErr(fmt.Errorf("logger: %w", err))
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "treat the network as unreachable")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging on stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(barcodeCmd)
}

// resolveDataDir applies --data-dir > data_dir (config or LECTOR_DATA_DIR) >
// platform default.
func resolveDataDir() (string, error) {
	configDataDir := ""
	if cfg != nil {
		configDataDir = cfg.GetString(cfgKeyDataDir)
	}
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir applies --config-dir > LECTOR_CONFIG_DIR > platform
// default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// online reports whether network operations may run.
func online() bool {
	if flagOffline {
		return false
	}
	return cfg == nil || cfg.GetBool(cfgKeyOnline)
}
