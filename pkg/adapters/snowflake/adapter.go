// Package snowflake provides a Snowflake warehouse adapter for datespine.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
	"github.com/snowflakedb/gosnowflake"
)

// Dialect is the Snowflake dialect descriptor.
// Snowflake DDL commits implicitly, so staged tables are exchanged with ALTER TABLE ... SWAP WITH.
var Dialect = &dialect.Dialect{
	Name:          "snowflake",
	DefaultSchema: "PUBLIC",
	Placeholder:   dialect.PlaceholderQuestion,
	SwapMode:      dialect.SwapExchange,
	ColumnTypes: map[dialect.ColumnKind]string{
		dialect.KindDate:      "DATE",
		dialect.KindInteger:   "NUMBER(10,0)",
		dialect.KindText:      "VARCHAR",
		dialect.KindTimestamp: "TIMESTAMP_NTZ",
	},
}

// Adapter implements the adapter.Adapter interface for Snowflake.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new Snowflake adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the Snowflake dialect descriptor.
func (a *Adapter) Dialect() *dialect.Dialect {
	return Dialect
}

// Connect establishes a connection to Snowflake.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to snowflake",
		slog.String("account", cfg.Account),
		slog.String("warehouse", cfg.Warehouse),
		slog.String("database", cfg.Database))

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping snowflake account %s: %w", cfg.Account, err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDSN renders the gosnowflake DSN for cfg.
func buildDSN(cfg adapter.Config) (string, error) {
	if cfg.Account == "" {
		return "", fmt.Errorf("snowflake target requires an account")
	}
	if cfg.Username == "" {
		return "", fmt.Errorf("snowflake target requires a user")
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		return "", fmt.Errorf("invalid snowflake params: %w", err)
	}

	sfCfg := &gosnowflake.Config{
		Account:      cfg.Account,
		User:         cfg.Username,
		Password:     cfg.Password,
		Database:     cfg.Database,
		Schema:       cfg.Schema,
		Warehouse:    cfg.Warehouse,
		Role:         cfg.Role,
		Application:  params.Application,
		LoginTimeout: params.LoginTimeout,
	}
	if params.Authenticator != "" {
		auth, err := authType(params.Authenticator)
		if err != nil {
			return "", err
		}
		sfCfg.Authenticator = auth
	}
	if len(params.Session) > 0 {
		sfCfg.Params = make(map[string]*string, len(params.Session))
		for k, v := range params.Session {
			sfCfg.Params[k] = &v
		}
	}

	dsn, err := gosnowflake.DSN(sfCfg)
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
	}
	return dsn, nil
}

// TableExists reports whether the relation exists.
func (a *Adapter) TableExists(ctx context.Context, rel core.Relation) (bool, error) {
	return a.TableExistsCommon(ctx, rel, Dialect)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
