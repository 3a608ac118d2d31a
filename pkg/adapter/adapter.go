// Package adapter provides warehouse adapter interfaces and shared plumbing
// for the datespine calendar engine.
//
// This package contains the public contract that all warehouse adapters must implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// Type aliases for the core connection types.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// Adapter defines the interface that all warehouse adapters must implement.
// It extends core.Adapter with the dialect used to render DDL and bind parameters.
type Adapter interface {
	core.Adapter

	// Dialect returns the SQL dialect descriptor for this adapter.
	Dialect() *dialect.Dialect
}
