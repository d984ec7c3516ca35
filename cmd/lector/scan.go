// Scan command: feeds scanner input through the scan controller.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/internal/scan"
	"github.com/mesh-intelligence/lector/pkg/barcode"
)

var (
	scanNoSession   bool
	scanMetricsFile string
)

var scanCmd = &cobra.Command{
	Use:   "scan <session-id> [barcode...]",
	Short: "Record scans into a session",
	Long: `Record scans into a session. Barcodes given as arguments are scanned in
order; with none, one barcode per line is read from stdin until EOF, which
is how a keyboard-wedge laser scanner delivers them.

With --no-session the barcodes are decoded and looked up but not stored.

Example:
  lector scan 3
  lector scan 3 900000001230003340000200B1234CONSEC0001
  lector scan --no-session < labels.txt`,
	Args: func(cmd *cobra.Command, args []string) error {
		if !scanNoSession && len(args) == 0 {
			return userErr(errors.New("scan: session id required (or --no-session)"))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := scan.NoSession
		if !scanNoSession {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			sessionID = id
			args = args[1:]
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("scan: %w", err))
		}
		defer backend.Detach()

		if sessionID != scan.NoSession {
			if _, err := backend.GetSession(sessionID); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
		}

		reg := prometheus.NewRegistry()
		ctrl := scan.NewController(backend, scan.NewMetrics(reg), log)

		out := cmd.OutOrStdout()
		var failed int
		report := func(r scan.Result) {
			if !r.Success {
				failed++
			}
			printScanResult(out, r)
		}

		if len(args) > 0 {
			for _, raw := range args {
				report(ctrl.Scan(raw, sessionID))
			}
		} else {
			if isTerminal(cmd.InOrStdin()) && !flagJSON {
				fmt.Fprintln(cmd.ErrOrStderr(), "Ready to scan. Ctrl-D to finish.")
			}
			if err := ctrl.Process(cmd.Context(), cmd.InOrStdin(), sessionID, report); err != nil && cmd.Context().Err() == nil {
				return sysErr(fmt.Errorf("scan: %w", err))
			}
		}

		if scanMetricsFile != "" {
			if err := prometheus.WriteToTextfile(scanMetricsFile, reg); err != nil {
				return sysErr(fmt.Errorf("scan: writing metrics: %w", err))
			}
		}

		if failed > 0 {
			return userErr(fmt.Errorf("scan: %d scan(s) not recorded", failed))
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoSession, "no-session", false, "decode and look up only; store nothing")
	scanCmd.Flags().StringVar(&scanMetricsFile, "metrics-file", "", "write scan counters to this node-exporter textfile")
}

// printScanResult writes one line per scan, or one JSON object per line in
// --json mode.
func printScanResult(w io.Writer, r scan.Result) {
	if flagJSON {
		data, err := json.Marshal(r)
		if err != nil {
			fmt.Fprintf(w, "{\"success\":false,\"error\":%q}\n", err.Error())
			return
		}
		fmt.Fprintln(w, string(data))
		return
	}

	if !r.Success {
		fmt.Fprintf(w, "REJECTED %q: %v\n", r.RawBarcode, r.Err)
		return
	}

	d := r.Decoded
	desc := "(not in catalog)"
	if r.Product != nil {
		desc = r.Product.Description
	}
	line := fmt.Sprintf("OK %s %s %s %s lote %s",
		d.ProductCodeNormalized, desc,
		barcode.FormatWeight(d.Weight), barcode.FormatUnits(d.Units), d.Batch)
	if r.ItemID != 0 {
		line += fmt.Sprintf(" [item %d]", r.ItemID)
	}
	fmt.Fprintln(w, line)
}

// isTerminal reports whether r is an interactive character device.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
