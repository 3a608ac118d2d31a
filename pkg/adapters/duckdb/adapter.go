// Package duckdb provides a DuckDB warehouse adapter for datespine.
//
// DuckDB backs local development and the integration tests; the calendar and
// its upstream quotes table live in a single database file (or in memory).
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Dialect is the DuckDB dialect descriptor.
// DuckDB keeps catalog changes transactional, so the staged table is copied over
// the destination inside a single transaction.
var Dialect = &dialect.Dialect{
	Name:          "duckdb",
	DefaultSchema: "main",
	Placeholder:   dialect.PlaceholderQuestion,
	SwapMode:      dialect.SwapCopy,
	ColumnTypes: map[dialect.ColumnKind]string{
		dialect.KindDate:      "DATE",
		dialect.KindInteger:   "INTEGER",
		dialect.KindText:      "VARCHAR",
		dialect.KindTimestamp: "TIMESTAMP",
	},
}

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the DuckDB dialect descriptor.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return fmt.Errorf("invalid duckdb params: %w", err)
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if path == ":memory:" {
		// every new connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.params = params

	if err := a.applyParams(ctx); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

// applyParams installs and loads extensions, then applies session settings.
func (a *Adapter) applyParams(ctx context.Context) error {
	for _, ext := range a.params.Extensions {
		if !core.ValidIdentifier(ext) {
			return fmt.Errorf("invalid duckdb extension name %q", ext)
		}
		a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
		if err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("failed to install extension %s: %w", ext, err)
		}
		if err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	for _, stmt := range a.params.settingStatements() {
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting: %w", err)
		}
	}
	return nil
}

// TableExists reports whether the relation exists.
func (a *Adapter) TableExists(ctx context.Context, rel core.Relation) (bool, error) {
	return a.TableExistsCommon(ctx, rel, Dialect)
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
