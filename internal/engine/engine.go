// Package engine runs the calendar dimension build: it reads the upstream
// watermark, generates the calendar, materializes it with full-replace
// semantics and records the run in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/materialize"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/state"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/watermark"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// Engine orchestrates calendar runs against one warehouse target.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	// SQL dialect for the target; resolved from the registry at construction
	// and never reassigned, so getters read it without dbMu
	dialect *dialect.Dialect

	logger *slog.Logger

	store       core.Store
	environment string
	generator   *calendar.Generator

	upstream         core.Relation
	upstreamColumn   string
	source           watermark.Source
	destination      core.Relation
	materialization  string
	batchSize        int
	failOnTruncation bool
}

// Config holds engine configuration.
type Config struct {
	// Start is the first date_key of the calendar.
	Start time.Time
	// RowCount is the maximum number of days generated.
	RowCount int
	// Labels controls month and day name rendering.
	Labels calendar.Labels
	// FailOnTruncation fails runs whose watermark lies past the horizon.
	FailOnTruncation bool

	// Upstream is the relation holding quote dates.
	Upstream core.Relation
	// UpstreamColumn is the date column read with MAX (default quote_date).
	UpstreamColumn string
	// Source overrides the SQL watermark source (optional).
	Source watermark.Source

	// Destination is the calendar table.
	Destination core.Relation
	// Materialization is the destination strategy (default table).
	Materialization string
	// BatchSize is the number of rows per INSERT (optional).
	BatchSize int

	// StatePath is the path to the SQLite state database
	StatePath string
	// Store overrides the SQLite state store (optional).
	Store core.Store
	// Environment is the default environment recorded on runs
	Environment string
	// AdapterConfig contains the warehouse adapter configuration
	AdapterConfig *adapter.Config
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Clock stamps load_timestamp (optional, defaults to time.Now)
	Clock func() time.Time
}

// New creates a new engine with lazy database connection.
// The warehouse is only connected when a watermark has to be read or the
// calendar written.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gen := &calendar.Generator{
		Start:    cfg.Start,
		RowCount: cfg.RowCount,
		Labels:   cfg.Labels,
		Clock:    cfg.Clock,
	}
	if err := gen.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calendar configuration: %w", err)
	}
	if err := cfg.Destination.Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	if err := materialize.ValidateStrategy(cfg.Materialization); err != nil {
		return nil, err
	}

	var dbConfig adapter.Config
	if cfg.AdapterConfig != nil {
		dbConfig = *cfg.AdapterConfig
	}
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}
	if !adapter.IsRegistered(dbConfig.Type) {
		return nil, &adapter.UnknownAdapterError{Type: dbConfig.Type, Available: adapter.ListAdapters()}
	}
	d, ok := dialect.Get(dbConfig.Type)
	if !ok {
		return nil, fmt.Errorf("dialect %q not found for adapter type %q", dbConfig.Type, dbConfig.Type)
	}

	env := cfg.Environment
	if env == "" {
		env = "dev"
	}

	column := cfg.UpstreamColumn
	if column == "" {
		column = "quote_date"
	}

	logger.Debug("initializing engine", "environment", env, "target", dbConfig.Type, "state_path", cfg.StatePath)

	store := cfg.Store
	if store == nil {
		sqlite := state.NewSQLiteStore(logger)
		if err := sqlite.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		store = sqlite
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	return &Engine{
		dbConfig:         dbConfig,
		dialect:          d,
		logger:           logger,
		store:            store,
		environment:      env,
		generator:        gen,
		upstream:         cfg.Upstream,
		upstreamColumn:   column,
		source:           cfg.Source,
		destination:      cfg.Destination,
		materialization:  cfg.Materialization,
		batchSize:        cfg.BatchSize,
		failOnTruncation: cfg.FailOnTruncation,
	}, nil
}

// ensureDBConnected lazily connects to the database.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.dbConfig.Type)

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	e.db = db
	e.dbConnected = true

	e.logger.Debug("database connected", "dialect", db.Dialect().Name)
	return nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
		e.db = nil
		e.dbConnected = false
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing engine: %w", err)
	}
	return nil
}

// --- Getters (public accessors) ---

// Environment returns the default environment.
func (e *Engine) Environment() string {
	return e.environment
}

// Destination returns the qualified destination table name.
func (e *Engine) Destination() string {
	return e.dialect.Qualify(e.destination)
}

// Upstream returns the qualified upstream relation name.
func (e *Engine) Upstream() string {
	return e.dialect.Qualify(e.upstream)
}
