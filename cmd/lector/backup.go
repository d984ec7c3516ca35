// Backup command: dumps the local database as JSONL files.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var backupOutDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write products, sessions and items as JSONL files",
	Long: `Write the catalog, every session and every item as JSONL files into a
new timestamped directory. Server settings are not included.

Example:
  lector backup --out /media/usb`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("backup: %w", err))
		}
		defer backend.Detach()

		dir := filepath.Join(backupOutDir, "lector-backup-"+time.Now().Format("20060102-150405"))
		sum, err := backend.Backup(dir)
		if err != nil {
			return sysErr(fmt.Errorf("backup: %w", err))
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, sum)
		}
		fmt.Fprintf(out, "Backed up %d product(s), %d session(s), %d item(s) to %s\n",
			sum.Products, sum.Sessions, sum.Items, sum.Dir)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutDir, "out", "o", ".", "directory to create the backup in")
}
