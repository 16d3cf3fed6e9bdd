// Command brewetl downloads the Open Brewery DB CSV and Brewers Association
// JSON feeds, validates them and replaces their raw tables in the embedded
// database, recording every run in ingest_runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "brewetl:", err)
		stop()
		os.Exit(1)
	}
}
