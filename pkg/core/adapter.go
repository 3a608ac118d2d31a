package core

import (
	"context"
	"database/sql"
)

// Adapter defines the interface that all warehouse adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the warehouse.
	Connect(ctx context.Context, cfg AdapterConfig) error

	// Close closes the warehouse connection.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// QueryRow executes a SQL statement expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) (*sql.Row, error)

	// BeginTx starts a transaction on the underlying connection pool.
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// TableExists reports whether the relation exists in the warehouse.
	TableExists(ctx context.Context, rel Relation) (bool, error)
}

// AdapterConfig holds configuration for connecting to a warehouse.
type AdapterConfig struct {
	Type      string
	Path      string
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
	Schema    string
	Account   string
	Warehouse string
	Role      string
	Options   map[string]string
	Params    map[string]any
}

// Rows wraps sql.Rows to provide a consistent interface.
type Rows struct {
	*sql.Rows
}
