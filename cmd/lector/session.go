// Inventory session commands.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Create, list, rename and delete inventory sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create [document-number]",
	Short: "Start a new inventory session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := ""
		if len(args) == 1 {
			doc = args[0]
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("session create: %w", err))
		}
		defer backend.Detach()

		id, err := backend.CreateSession(doc)
		if err != nil {
			return sysErr(fmt.Errorf("session create: %w", err))
		}
		log.Info("session created", zap.Int64("session_id", id), zap.String("document", doc))

		if flagJSON {
			s, err := backend.GetSession(id)
			if err != nil {
				return sysErr(fmt.Errorf("session create: %w", err))
			}
			return printJSON(cmd.OutOrStdout(), s)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created session %d\n", id)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("session list: %w", err))
		}
		defer backend.Detach()

		sessions, err := backend.ListSessions()
		if err != nil {
			return sysErr(fmt.Errorf("session list: %w", err))
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		printTable(out, []string{"ID", "DOCUMENT", "CREATED", "ITEMS"}, sessionRows(sessions))
		fmt.Fprintf(out, "Total: %d session(s)\n", len(sessions))
		return nil
	},
}

func sessionRows(sessions []types.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		doc := s.DocumentNumber
		if doc == "" {
			doc = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			truncate(doc, 30),
			s.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(s.TotalItems),
		})
	}
	return rows
}

var sessionRenameCmd = &cobra.Command{
	Use:   "rename <id> <document-number>",
	Short: "Change a session's document number",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("session rename: %w", err))
		}
		defer backend.Detach()

		if err := backend.UpdateSessionDocument(id, args[1]); err != nil {
			return fmt.Errorf("session rename: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session %d document set to %q\n", id, args[1])
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and all of its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return sysErr(fmt.Errorf("session delete: %w", err))
		}
		defer backend.Detach()

		if err := backend.DeleteSession(id); err != nil {
			return fmt.Errorf("session delete: %w", err)
		}
		log.Info("session deleted", zap.Int64("session_id", id))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", id)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionRenameCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
}
