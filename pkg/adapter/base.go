package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query, QueryRow and BeginTx implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// errNotConnected is returned by every operation before Connect succeeds.
var errNotConnected = fmt.Errorf("database connection not established")

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if b.DB == nil {
		return errNotConnected
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.Rows, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// QueryRow executes a SQL statement expected to return at most one row.
// Errors are deferred to Scan, as with database/sql.
func (b *BaseSQLAdapter) QueryRow(ctx context.Context, sqlStr string, args ...any) (*sql.Row, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}
	return b.DB.QueryRowContext(ctx, sqlStr, args...), nil
}

// BeginTx starts a transaction.
func (b *BaseSQLAdapter) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if b.DB == nil {
		return nil, errNotConnected
	}
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// TableExistsCommon provides a shared implementation of TableExists using
// information_schema.tables. Names are compared case-insensitively so that
// warehouses which fold unquoted identifiers to upper case behave the same
// as those that fold to lower case.
func (b *BaseSQLAdapter) TableExistsCommon(ctx context.Context, rel core.Relation, d *dialect.Dialect) (bool, error) {
	if b.DB == nil {
		return false, errNotConnected
	}
	if err := rel.Validate(); err != nil {
		return false, err
	}

	schema := rel.Schema
	if schema == "" {
		schema = d.DefaultSchema
	}

	infoSchema := "information_schema.tables"
	if rel.Database != "" {
		infoSchema = rel.Database + "." + infoSchema
	}

	//nolint:gosec // relation parts are validated identifiers, placeholders come from the dialect
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE UPPER(table_schema) = UPPER(%s) AND UPPER(table_name) = UPPER(%s)
	`, infoSchema, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	var count int64
	if err := b.DB.QueryRowContext(ctx, query, schema, rel.Name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", rel, err)
	}
	return count > 0, nil
}
