// Package duckdb provides a DuckDB warehouse adapter for datespine.
//
// This file registers the DuckDB adapter and dialect.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

func init() {
	dialect.Register(Dialect)
	adapter.Register("duckdb", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
