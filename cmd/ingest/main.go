// Command stock-ingest pulls market reference data from the KIS and DART
// providers into a local store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stock_ingest/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
