// Shared helpers for lector CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/lector/internal/catalogsync"
	"github.com/mesh-intelligence/lector/internal/sqlite"
	"github.com/mesh-intelligence/lector/pkg/barcode"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error { return classify(err, exitUserError) }
func sysErr(err error) error  { return classify(err, exitSysError) }

// classify tags err with code unless it already carries one.
func classify(err error, code int) error {
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	return &exitError{code: code, err: err}
}

// userErrors are caused by operator input rather than the system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrEmptySession,
	barcode.ErrInvalidLength,
	barcode.ErrInvalidPrefix,
	barcode.ErrInvalidNumeric,
	barcode.ErrFieldOverflow,
	catalogsync.ErrNoSettings,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
}

// exitCode maps err to exitUserError or exitSysError.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	for _, u := range userErrors {
		if errors.Is(err, u) {
			return exitUserError
		}
	}
	return exitSysError
}

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it with the configured backend name. The caller must defer
// backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	name := types.BackendSQLite
	if cfg != nil {
		name = cfg.GetString(cfgKeyBackend)
	}

	config := types.Config{Backend: name, DataDir: dataDir}
	if err := config.Validate(); err != nil {
		return nil, userErr(fmt.Errorf("config %s %q: %w", cfgKeyBackend, name, err))
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(config); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// parseSessionID parses a positional session ID argument.
func parseSessionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, userErr(fmt.Errorf("invalid session id %q: %w", arg, types.ErrInvalidID))
	}
	return id, nil
}

// printJSON writes v indented to w.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTable writes a header and rows aligned in columns, trimming trailing
// padding from each line.
func printTable(w io.Writer, header []string, rows [][]string) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
