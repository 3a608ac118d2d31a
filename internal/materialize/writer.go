// Package materialize writes the calendar dimension with full-replace
// semantics: rows are loaded into a staging table which is then swapped
// into the destination in a single step, so readers never observe a
// partially written table.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// ErrUnsupportedStrategy is returned for materialization strategies other than full-replace tables.
var ErrUnsupportedStrategy = errors.New("unsupported materialization strategy")

// Writer materializes calendar rows into Destination.
type Writer struct {
	Adapter     core.Adapter
	Dialect     *dialect.Dialect
	Destination core.Relation
	Strategy    string
	BatchSize   int
	Logger      *slog.Logger

	// suffix generates the staging table suffix; tests replace it.
	suffix func() string
}

// Stats describes a completed write.
type Stats struct {
	Rows        int64
	Staging     string
	Destination string
	Duration    time.Duration
}

// ValidateStrategy reports whether strategy can be materialized. Only full
// replace tables are supported; an empty strategy means table.
func ValidateStrategy(strategy string) error {
	switch strategy {
	case "", core.MaterializationTable:
		return nil
	case core.MaterializationView, core.MaterializationIncremental:
		return fmt.Errorf("%w: %q (only %q full replace is supported)", ErrUnsupportedStrategy, strategy, core.MaterializationTable)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStrategy, strategy)
	}
}

// Validate checks the writer configuration.
func (w *Writer) Validate() error {
	if err := ValidateStrategy(w.Strategy); err != nil {
		return err
	}
	if w.Adapter == nil {
		return errors.New("writer requires an adapter")
	}
	if w.Dialect == nil {
		return errors.New("writer requires a dialect")
	}
	if err := w.Destination.Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	return nil
}

// Write replaces the destination with rows. On failure before the swap the
// staging table is dropped and the destination is left as it was. An empty
// row set replaces the destination with an empty table.
func (w *Writer) Write(ctx context.Context, rows []calendar.Day) (Stats, error) {
	if err := w.Validate(); err != nil {
		return Stats{}, err
	}

	started := time.Now()
	logger := w.logger()
	staging := w.Destination.WithName(w.stagingName())
	stats := Stats{
		Staging:     w.Dialect.Qualify(staging),
		Destination: w.Dialect.Qualify(w.Destination),
	}

	if schema := w.Destination.SchemaRelation(); schema != "" {
		if err := w.Adapter.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return stats, fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}

	logger.Debug("creating staging table", "staging", stats.Staging)
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", stats.Staging, columnDefs(w.Dialect))
	if err := w.Adapter.Exec(ctx, createSQL); err != nil {
		return stats, fmt.Errorf("failed to create staging table %s: %w", stats.Staging, err)
	}

	n, err := w.insert(ctx, stats.Staging, rows)
	if err != nil {
		w.dropStaging(ctx, stats.Staging)
		return stats, err
	}
	stats.Rows = n

	logger.Debug("swapping staging table into place",
		"staging", stats.Staging, "destination", stats.Destination, "mode", w.Dialect.SwapMode.String())
	if err := w.swap(ctx, staging); err != nil {
		w.dropStaging(ctx, stats.Staging)
		return stats, fmt.Errorf("failed to replace %s: %w", stats.Destination, err)
	}

	stats.Duration = time.Since(started)
	logger.Info("calendar materialized", "destination", stats.Destination, "rows", stats.Rows, "duration", stats.Duration)
	return stats, nil
}

// insert loads rows into the staging table in multi-row INSERT batches.
func (w *Writer) insert(ctx context.Context, table string, rows []calendar.Day) (int64, error) {
	size := w.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var written int64
	for start := 0; start < len(rows); start += size {
		batch := rows[start:min(start+size, len(rows))]
		query, args := w.insertStatement(table, batch)
		if err := w.Adapter.Exec(ctx, query, args...); err != nil {
			return written, fmt.Errorf("failed to insert rows %d-%d into %s: %w", start+1, start+len(batch), table, err)
		}
		written += int64(len(batch))
	}
	return written, nil
}

func (w *Writer) insertStatement(table string, batch []calendar.Day) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(ColumnNames(), ", "))

	args := make([]any, 0, len(batch)*len(columns))
	for i := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, c := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, c.value(&batch[i]))
			sb.WriteString(w.Dialect.FormatPlaceholder(len(args)))
		}
		sb.WriteByte(')')
	}
	return sb.String(), args
}

// dropStaging removes the staging table after a failure. It runs even when
// ctx is already canceled.
func (w *Writer) dropStaging(ctx context.Context, staging string) {
	ctx = context.WithoutCancel(ctx)
	if err := w.Adapter.Exec(ctx, "DROP TABLE IF EXISTS "+staging); err != nil {
		w.logger().Warn("failed to drop staging table", "staging", staging, "error", err)
	}
}

func (w *Writer) stagingName() string {
	suffix := w.suffix
	if suffix == nil {
		suffix = randomSuffix
	}
	return w.Destination.Name + "__staging_" + suffix()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}
