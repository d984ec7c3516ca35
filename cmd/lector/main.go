// Package main provides the lector CLI. A laser scanner in keyboard-wedge
// mode types one barcode per line; `lector scan` reads them from stdin and
// records them in the active inventory session.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lector:", err)
		os.Exit(exitCode(err))
	}
}
