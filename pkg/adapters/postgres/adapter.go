// Package postgres provides a PostgreSQL warehouse adapter for datespine.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// Dialect is the PostgreSQL dialect descriptor.
var Dialect = &dialect.Dialect{
	Name:          "postgres",
	DefaultSchema: "public",
	Placeholder:   dialect.PlaceholderDollar,
	SwapMode:      dialect.SwapRename,
	ColumnTypes: map[dialect.ColumnKind]string{
		dialect.KindDate:      "DATE",
		dialect.KindInteger:   "INTEGER",
		dialect.KindText:      "TEXT",
		dialect.KindTimestamp: "TIMESTAMP",
	},
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the PostgreSQL dialect descriptor.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config) string {
	// Build key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		quoteDSNValue(host), port, quoteDSNValue(cfg.Database), quoteDSNValue(sslmode))

	if cfg.Username != "" {
		dsn += " user=" + quoteDSNValue(cfg.Username)
	}
	if cfg.Password != "" {
		dsn += " password=" + quoteDSNValue(cfg.Password)
	}
	if cfg.Options != nil {
		if app, ok := cfg.Options["application_name"]; ok {
			dsn += " application_name=" + quoteDSNValue(app)
		}
	}

	return dsn
}

// quoteDSNValue quotes a keyword/value DSN value when it is empty or contains
// whitespace, quotes or backslashes, escaping quotes and backslashes.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// TableExists reports whether the relation exists.
// PostgreSQL cannot query another database's catalog, so the database part of
// the relation is ignored.
func (a *Adapter) TableExists(ctx context.Context, rel core.Relation) (bool, error) {
	rel.Database = ""
	return a.TableExistsCommon(ctx, rel, Dialect)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
