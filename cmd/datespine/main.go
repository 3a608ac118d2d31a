// Package main provides the datespine CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli"

	// Register warehouse adapters.
	_ "github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/duckdb"
	_ "github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/postgres"
	_ "github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/snowflake"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
