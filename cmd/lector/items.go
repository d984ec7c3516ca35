// Item listing and undo commands.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lector/pkg/barcode"
	"github.com/mesh-intelligence/lector/pkg/types"
)

var itemsCmd = &cobra.Command{
	Use:   "items <session-id>",
	Short: "List the items of a session in scan order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("items: %w", err))
		}
		defer backend.Detach()

		session, err := backend.GetSession(id)
		if err != nil {
			return fmt.Errorf("items: %w", err)
		}
		items, err := backend.ListItems(id)
		if err != nil {
			return sysErr(fmt.Errorf("items: %w", err))
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]any{"session": session, "items": items})
		}
		if len(items) == 0 {
			fmt.Fprintf(out, "Session %d has no items.\n", id)
			return nil
		}

		rows := make([][]string, 0, len(items))
		for i, it := range items {
			desc := ""
			if p, err := backend.FindProduct(it.ProductCode); err == nil {
				desc = truncate(p.Description, 30)
			}
			rows = append(rows, itemRow(i+1, it, desc))
		}
		printTable(out, []string{"#", "PRODUCT", "DESCRIPTION", "WEIGHT", "UNITS", "BATCH", "SCANNED"}, rows)
		fmt.Fprintf(out, "Total: %d item(s)\n", session.TotalItems)
		return nil
	},
}

func itemRow(n int, it types.Item, desc string) []string {
	return []string{
		strconv.Itoa(n),
		types.NormalizeCode(it.ProductCode),
		desc,
		barcode.FormatWeight(it.Weight),
		barcode.FormatUnits(it.Units),
		it.Batch,
		it.ScannedAt.Local().Format(time.TimeOnly),
	}
}

var undoCmd = &cobra.Command{
	Use:   "undo <session-id>",
	Short: "Remove the most recent item of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("undo: %w", err))
		}
		defer backend.Detach()

		removed, err := backend.DeleteLastItem(id)
		if err != nil {
			return fmt.Errorf("undo: %w", err)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]bool{"removed": removed})
		}
		if !removed {
			fmt.Fprintf(out, "Session %d has no items to undo\n", id)
			return nil
		}
		fmt.Fprintf(out, "Removed last item of session %d\n", id)
		return nil
	},
}
