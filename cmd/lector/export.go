// Export command: renders a session as the back-office import file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/export"
)

var (
	exportOutDir string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write a session as an inventario_*.txt import file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		loc, err := exportLocation(cfg)
		if err != nil {
			return userErr(fmt.Errorf("export: %w", err))
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("export: %w", err))
		}
		defer backend.Detach()

		x, err := export.New(backend, export.WithLocation(loc), export.WithLogger(log)).ExportSession(id)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportStdout {
			fmt.Fprintln(out, x.Content)
			return nil
		}

		path, err := export.WriteFile(exportOutDir, x)
		if err != nil {
			return sysErr(fmt.Errorf("export: %w", err))
		}
		log.Info("session exported", zap.Int64("session_id", id), zap.String("file", path))

		if flagJSON {
			return printJSON(out, map[string]any{"file": path, "lines": x.Lines})
		}
		fmt.Fprintf(out, "Exported %d line(s) to %s\n", x.Lines, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", ".", "directory to write the export file into")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "print the export instead of writing a file")
}
