// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/terrier-cli/cmd"
	"github.com/xkilldash9x/terrier-cli/internal/observability"
)

// main is the entry point for the terrier CLI application.
func main() {
	// A signal-aware context lets an in-flight run shut its browser down
	// cleanly on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
