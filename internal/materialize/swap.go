package materialize

import (
	"context"
	"fmt"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
)

// swap replaces the destination with the staging table according to the
// dialect's swap mode.
func (w *Writer) swap(ctx context.Context, staging core.Relation) error {
	switch w.Dialect.SwapMode {
	case dialect.SwapRename:
		return w.inTx(ctx,
			"DROP TABLE IF EXISTS "+w.Dialect.Qualify(w.Destination),
			fmt.Sprintf("ALTER TABLE %s RENAME TO %s", w.Dialect.Qualify(staging), w.Destination.Name),
		)
	case dialect.SwapCopy:
		return w.inTx(ctx,
			fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s ORDER BY date_key",
				w.Dialect.Qualify(w.Destination), w.Dialect.Qualify(staging)),
			"DROP TABLE "+w.Dialect.Qualify(staging),
		)
	case dialect.SwapExchange:
		return w.exchange(ctx, staging)
	default:
		return fmt.Errorf("dialect %s: unknown swap mode %d", w.Dialect.Name, w.Dialect.SwapMode)
	}
}

// exchange swaps staging with an existing destination in one statement, or
// renames staging when there is no destination yet. After a swap the staging
// name holds the previous contents, which are dropped.
func (w *Writer) exchange(ctx context.Context, staging core.Relation) error {
	dest := w.Dialect.Qualify(w.Destination)
	stg := w.Dialect.Qualify(staging)

	exists, err := w.Adapter.TableExists(ctx, w.Destination)
	if err != nil {
		return err
	}
	if !exists {
		return w.Adapter.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", stg, dest))
	}

	if err := w.Adapter.Exec(ctx, fmt.Sprintf("ALTER TABLE %s SWAP WITH %s", dest, stg)); err != nil {
		return err
	}
	if err := w.Adapter.Exec(ctx, "DROP TABLE "+stg); err != nil {
		w.logger().Warn("failed to drop previous calendar table", "table", stg, "error", err)
	}
	return nil
}

// inTx runs statements in a single transaction.
func (w *Writer) inTx(ctx context.Context, statements ...string) (err error) {
	tx, err := w.Adapter.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return tx.Commit()
}
