// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/output"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapter"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/adapters/duckdb"
	"github.com/stretchr/testify/require"
)

// ProjectConfig is the datespine.yaml written by SetupTestProject.
const ProjectConfig = `calendar:
  start_date: "2025-06-01"
  row_count: 100
upstream:
  schema: silver
  table: stock_quotes
destination:
  schema: gold
  table: dim_date
state_path: .datespine/state.db
environment: test
target:
  type: duckdb
  database: warehouse.duckdb
environments:
  short:
    destination:
      table: dim_date_short
`

// SetupTestProject creates a temporary project with a DuckDB warehouse whose
// silver.stock_quotes table holds the given quote dates. It returns the
// project directory.
func SetupTestProject(t *testing.T, quoteDates ...string) string {
	t.Helper()

	dir := t.TempDir()
	ctx := context.Background()

	adp := duckdb.New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: filepath.Join(dir, "warehouse.duckdb")}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE SCHEMA silver"))
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE silver.stock_quotes (symbol VARCHAR, quote_date DATE, close DOUBLE)"))
	for _, d := range quoteDates {
		require.NoError(t, adp.Exec(ctx, "INSERT INTO silver.stock_quotes VALUES ('MSFT', CAST(? AS DATE), 420.5)", d))
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "datespine.yaml"), []byte(ProjectConfig), 0o600))
	return dir
}

// CountRows returns the number of rows in a warehouse table of a project.
func CountRows(t *testing.T, dir, table string) int64 {
	t.Helper()
	ctx := context.Background()

	adp := duckdb.New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: filepath.Join(dir, "warehouse.duckdb")}))
	defer func() { _ = adp.Close() }()

	row, err := adp.QueryRow(ctx, "SELECT COUNT(*) FROM "+table)
	require.NoError(t, err)
	var n int64
	require.NoError(t, row.Scan(&n))
	return n
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}
