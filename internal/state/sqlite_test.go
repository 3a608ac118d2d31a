package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/testutil"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRun(env string, startedAt time.Time) *core.Run {
	return &core.Run{
		Environment: env,
		Destination: "gold.dim_date",
		StartDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		RowLimit:    10000,
		StartedAt:   startedAt,
	}
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "second close is a no-op")
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".datespine", "nested", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer func() { _ = store.Close() }()
	require.NoError(t, store.InitSchema())

	assert.FileExists(t, path)
}

func TestSQLiteStore_InitSchemaIdempotent(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.InitSchema())

	run := newRun("dev", time.Now())
	require.NoError(t, store.CreateRun(run))
	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	assert.Error(t, store.InitSchema())
	assert.Error(t, store.CreateRun(&core.Run{}))
	assert.Error(t, store.CompleteRun("x", core.RunOutcome{}))
	_, err := store.GetRun("x")
	assert.Error(t, err)
	_, err = store.GetLatestRun("dev")
	assert.Error(t, err)
	_, err = store.ListRuns(10)
	assert.Error(t, err)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	wm := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		outcome core.RunOutcome
	}{
		{
			name: "completed",
			outcome: core.RunOutcome{
				Status:      core.RunStatusCompleted,
				Watermark:   &wm,
				RowsWritten: 1991,
			},
		},
		{
			name: "completed truncated",
			outcome: core.RunOutcome{
				Status:      core.RunStatusCompleted,
				Watermark:   &wm,
				RowsWritten: 5,
				Truncated:   true,
			},
		},
		{
			name: "failed without watermark",
			outcome: core.RunOutcome{
				Status: core.RunStatusFailed,
				Error:  "upstream silver.stock_quotes unavailable: table not found",
			},
		},
		{
			name:    "completed empty upstream",
			outcome: core.RunOutcome{Status: core.RunStatusCompleted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			run := newRun("prod", time.Time{})
			require.NoError(t, store.CreateRun(run))
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, core.RunStatusRunning, run.Status)
			assert.False(t, run.StartedAt.IsZero())

			pending, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, core.RunStatusRunning, pending.Status)
			assert.Nil(t, pending.CompletedAt)
			assert.Nil(t, pending.Watermark)

			require.NoError(t, store.CompleteRun(run.ID, tt.outcome))

			got, err := store.GetRun(run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome.Status, got.Status)
			assert.Equal(t, "prod", got.Environment)
			assert.Equal(t, "gold.dim_date", got.Destination)
			assert.Equal(t, "2020-01-01", got.StartDate.Format("2006-01-02"))
			assert.Equal(t, 10000, got.RowLimit)
			assert.Equal(t, tt.outcome.RowsWritten, got.RowsWritten)
			assert.Equal(t, tt.outcome.Truncated, got.Truncated)
			assert.Equal(t, tt.outcome.Error, got.Error)
			require.NotNil(t, got.CompletedAt)
			assert.False(t, got.CompletedAt.Before(got.StartedAt))

			if tt.outcome.Watermark != nil {
				require.NotNil(t, got.Watermark)
				assert.True(t, tt.outcome.Watermark.Equal(*got.Watermark))
			} else {
				assert.Nil(t, got.Watermark)
			}
		})
	}
}

func TestSQLiteStore_CompleteUnknownRun(t *testing.T) {
	store := setupTestStore(t)
	err := store.CompleteRun("missing", core.RunOutcome{Status: core.RunStatusFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.GetLatestRun("prod")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_LatestAndList(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

	var ids []string
	for i, env := range []string{"dev", "prod", "dev", "prod", "dev"} {
		run := newRun(env, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.CreateRun(run))
		ids = append(ids, run.ID)
	}

	latest, err := store.GetLatestRun("prod")
	require.NoError(t, err)
	assert.Equal(t, ids[3], latest.ID)

	latest, err = store.GetLatestRun("dev")
	require.NoError(t, err)
	assert.Equal(t, ids[4], latest.ID)

	runs, err := store.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[4], ids[3], ids[2]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	all, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	require.NoError(t, store.InitSchema())
	run := newRun("prod", time.Time{})
	require.NoError(t, store.CreateRun(run))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore(nil)
	require.NoError(t, reopened.Open(path))
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.InitSchema())

	got, err := reopened.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}
