package engine

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/calendar"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/materialize"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/testutil"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/watermark"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/duckdb"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	upstream    = core.Relation{Schema: "silver", Name: "stock_quotes"}
	destination = core.Relation{Schema: "gold", Name: "dim_date"}
	loadedAt    = time.Date(2025, 6, 14, 5, 0, 0, 0, time.UTC)
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// newWarehouse creates a DuckDB file with the upstream quotes table and the
// given quote dates, and returns its path.
func newWarehouse(t *testing.T, quoteDates ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.duckdb")

	adp := duckdb.New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: path}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE SCHEMA silver"))
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE silver.stock_quotes (symbol VARCHAR, quote_date DATE, close DOUBLE)"))
	for _, d := range quoteDates {
		require.NoError(t, adp.Exec(ctx, "INSERT INTO silver.stock_quotes VALUES ('AAPL', CAST(? AS DATE), 196.45)", d))
	}
	return path
}

func testConfig(t *testing.T, warehouse string) Config {
	t.Helper()
	return Config{
		Start:          mustDate(t, "2025-06-01"),
		RowCount:       100,
		Upstream:       upstream,
		UpstreamColumn: "quote_date",
		Destination:    destination,
		StatePath:      filepath.Join(t.TempDir(), ".datespine", "state.db"),
		Environment:    "test",
		AdapterConfig:  &adapter.Config{Type: "duckdb", Path: warehouse},
		Logger:         testutil.NewTestLogger(t),
		Clock:          func() time.Time { return loadedAt },
	}
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func destinationRange(t *testing.T, e *Engine) (count int64, first, last time.Time) {
	t.Helper()
	row, err := e.db.QueryRow(context.Background(),
		"SELECT COUNT(*), MIN(date_key), MAX(date_key) FROM gold.dim_date")
	require.NoError(t, err)

	var minKey, maxKey *time.Time
	require.NoError(t, row.Scan(&count, &minKey, &maxKey))
	if minKey != nil {
		first, last = *minKey, *maxKey
	}
	return count, first, last
}

func TestNew(t *testing.T) {
	e := newTestEngine(t, testConfig(t, ""))

	assert.NotNil(t, e.store)
	assert.Nil(t, e.db, "database connects lazily")
	assert.Equal(t, "test", e.Environment())
	assert.Equal(t, "gold.dim_date", e.Destination())
	assert.Equal(t, "silver.stock_quotes", e.Upstream())
	assert.Equal(t, 100, e.generator.RowCount)
}

func TestNew_Defaults(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Environment = ""
	cfg.UpstreamColumn = ""
	cfg.AdapterConfig = nil
	cfg.Destination = core.Relation{Name: "dim_date"}

	e := newTestEngine(t, cfg)
	assert.Equal(t, "dev", e.Environment())
	assert.Equal(t, "quote_date", e.upstreamColumn)
	assert.Equal(t, "duckdb", e.dbConfig.Type)
	assert.Equal(t, "main.dim_date", e.Destination())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "zero row count",
			mutate:  func(cfg *Config) { cfg.RowCount = 0 },
			wantErr: "row count must be positive",
		},
		{
			name:    "missing start",
			mutate:  func(cfg *Config) { cfg.Start = time.Time{} },
			wantErr: "start date is required",
		},
		{
			name:    "invalid destination",
			mutate:  func(cfg *Config) { cfg.Destination = core.Relation{Name: "dim date"} },
			wantErr: "invalid destination",
		},
		{
			name:   "unsupported materialization",
			mutate: func(cfg *Config) { cfg.Materialization = core.MaterializationIncremental },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, materialize.ErrUnsupportedStrategy)
			},
		},
		{
			name:   "unknown adapter",
			mutate: func(cfg *Config) { cfg.AdapterConfig = &adapter.Config{Type: "bigquery"} },
			check: func(t *testing.T, err error) {
				var unknown *adapter.UnknownAdapterError
				require.ErrorAs(t, err, &unknown)
				assert.Contains(t, unknown.Available, "duckdb")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "")
			tt.mutate(&cfg)

			_, err := New(cfg)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-06-12", "2025-06-13", "2025-06-11")))

	run, err := e.Run(ctx, "", RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusCompleted, run.Status)
	assert.Equal(t, "test", run.Environment)
	assert.Equal(t, "gold.dim_date", run.Destination)
	assert.Equal(t, int64(13), run.RowsWritten)
	assert.False(t, run.Truncated)
	require.NotNil(t, run.Watermark)
	assert.Equal(t, "2025-06-13", run.Watermark.Format(calendar.DateLayout))

	count, first, last := destinationRange(t, e)
	assert.Equal(t, int64(13), count)
	assert.Equal(t, "2025-06-01", first.Format(calendar.DateLayout))
	assert.Equal(t, "2025-06-13", last.Format(calendar.DateLayout))

	// new upstream data extends the calendar on the next run
	require.NoError(t, e.db.Exec(ctx, "INSERT INTO silver.stock_quotes VALUES ('MSFT', DATE '2025-06-16', 478.87)"))

	run, err = e.Run(ctx, "", RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(16), run.RowsWritten)

	count, _, last = destinationRange(t, e)
	assert.Equal(t, int64(16), count)
	assert.Equal(t, "2025-06-16", last.Format(calendar.DateLayout))

	runs, err := e.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, run.ID, runs[0].ID)

	latest, err := e.LatestRun("")
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)

	got, err := e.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(16), got.RowsWritten)
}

func TestRun_LoadTimestamp(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-06-03")))

	_, err := e.Run(ctx, "", RunOptions{})
	require.NoError(t, err)

	row, err := e.db.QueryRow(ctx, "SELECT COUNT(DISTINCT load_timestamp), MIN(load_timestamp) FROM gold.dim_date")
	require.NoError(t, err)
	var distinct int64
	var ts time.Time
	require.NoError(t, row.Scan(&distinct, &ts))
	assert.Equal(t, int64(1), distinct)
	assert.True(t, loadedAt.Equal(ts), "got %s", ts)
}

func TestRun_EmptyUpstream(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testConfig(t, newWarehouse(t)))

	run, err := e.Run(ctx, "", RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, run.Status)
	assert.Nil(t, run.Watermark)
	assert.Zero(t, run.RowsWritten)

	ok, err := e.db.TableExists(ctx, destination)
	require.NoError(t, err)
	assert.True(t, ok, "destination is replaced by an empty table")

	count, _, _ := destinationRange(t, e)
	assert.Zero(t, count)
}

func TestRun_WatermarkBeforeStart(t *testing.T) {
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-05-30")))

	run, err := e.Run(context.Background(), "", RunOptions{})
	require.NoError(t, err)
	assert.Zero(t, run.RowsWritten)
	require.NotNil(t, run.Watermark)
}

func TestRun_UpstreamUnavailableKeepsDestination(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-06-10")))

	_, err := e.Run(ctx, "", RunOptions{})
	require.NoError(t, err)

	require.NoError(t, e.db.Exec(ctx, "DROP TABLE silver.stock_quotes"))

	run, err := e.Run(ctx, "prod", RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, watermark.ErrUpstreamUnavailable)
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusFailed, run.Status)
	assert.Equal(t, "prod", run.Environment)
	assert.Contains(t, run.Error, "silver.stock_quotes")
	assert.NotNil(t, run.CompletedAt)

	count, _, last := destinationRange(t, e)
	assert.Equal(t, int64(10), count)
	assert.Equal(t, "2025-06-10", last.Format(calendar.DateLayout))
}

func TestRun_TruncationWarns(t *testing.T) {
	cfg := testConfig(t, newWarehouse(t, "2025-06-10"))
	cfg.RowCount = 5
	logger, rec := testutil.NewRecorder()
	cfg.Logger = logger

	e := newTestEngine(t, cfg)
	run, err := e.Run(context.Background(), "", RunOptions{})
	require.NoError(t, err)
	assert.True(t, run.Truncated)
	assert.Equal(t, int64(5), run.RowsWritten)

	warnings := rec.Messages(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "truncated")

	missing, ok := rec.Attr(warnings[0], "missing_days")
	require.True(t, ok)
	assert.Equal(t, int64(5), missing.Int64())

	count, _, last := destinationRange(t, e)
	assert.Equal(t, int64(5), count)
	assert.Equal(t, "2025-06-05", last.Format(calendar.DateLayout))
}

func TestRun_FailOnTruncation(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, newWarehouse(t, "2025-06-10"))
	cfg.RowCount = 5
	cfg.FailOnTruncation = true

	e := newTestEngine(t, cfg)
	run, err := e.Run(ctx, "", RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, core.RunStatusFailed, run.Status)
	assert.True(t, run.Truncated)

	ok, err := e.db.TableExists(ctx, destination)
	require.NoError(t, err)
	assert.False(t, ok, "nothing is written when truncation fails the run")
}

func TestRun_WatermarkOverride(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, newWarehouse(t, "2025-06-20"))
	e := newTestEngine(t, cfg)

	wm := mustDate(t, "2025-06-04")
	run, err := e.Run(ctx, "", RunOptions{Watermark: &wm})
	require.NoError(t, err)
	assert.Equal(t, int64(4), run.RowsWritten)
	assert.Equal(t, "2025-06-04", run.Watermark.Format(calendar.DateLayout))
}

type failingSource struct{}

func (failingSource) MaxObservedDate(context.Context) (calendar.Watermark, error) {
	return calendar.Watermark{}, &watermark.UpstreamError{Relation: "silver.stock_quotes", Err: errors.New("timeout")}
}

func TestRun_ConfiguredSource(t *testing.T) {
	cfg := testConfig(t, newWarehouse(t))
	cfg.Source = failingSource{}
	e := newTestEngine(t, cfg)

	run, err := e.Run(context.Background(), "", RunOptions{})
	require.ErrorIs(t, err, watermark.ErrUpstreamUnavailable)
	assert.Equal(t, core.RunStatusFailed, run.Status)
}

func TestRun_ConnectionFailureRecorded(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.AdapterConfig = &adapter.Config{
		Type:   "duckdb",
		Params: map[string]any{"unknown_option": true},
	}
	e := newTestEngine(t, cfg)

	run, err := e.Run(context.Background(), "", RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
	require.NotNil(t, run)
	assert.Equal(t, core.RunStatusFailed, run.Status)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-06-30")))

	res, err := e.Preview(ctx, RunOptions{}, 7)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 7)
	assert.Equal(t, 30, res.Coverage.Days)
	assert.Equal(t, loadedAt, res.Rows[0].LoadTimestamp)

	ok, err := e.db.TableExists(ctx, destination)
	require.NoError(t, err)
	assert.False(t, ok, "preview does not write")

	wm := mustDate(t, "2025-06-02")
	res, err = e.Preview(ctx, RunOptions{Watermark: &wm}, 0)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestCoverage(t *testing.T) {
	cfg := testConfig(t, newWarehouse(t, "2025-12-31"))
	e := newTestEngine(t, cfg)

	cov, err := e.Coverage(context.Background())
	require.NoError(t, err)
	assert.True(t, cov.Truncated)
	assert.Equal(t, 100, cov.Days)
	assert.Equal(t, "2025-09-08", cov.Horizon.Format(calendar.DateLayout))
	assert.Equal(t, "2025-12-31", cov.Watermark.String())
}

func TestCoverage_ConcurrentWithAccessors(t *testing.T) {
	e := newTestEngine(t, testConfig(t, newWarehouse(t, "2025-06-30")))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.Coverage(ctx)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				assert.Equal(t, "gold.dim_date", e.Destination())
				assert.Equal(t, "silver.stock_quotes", e.Upstream())
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
