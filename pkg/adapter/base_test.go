package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			assert.NoError(t, base.Close())
			assert.False(t, base.IsConnected())
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		args      []any
		expectErr bool
		errMsg    string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE dim_date").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql: "CREATE TABLE dim_date (date_key DATE)",
		},
		{
			name:    "exec with args",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO dim_date").
					WithArgs(2025, "March").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			sql:  "INSERT INTO dim_date (year, month_name) VALUES (?, ?)",
			args: []any{2025, "March"},
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}
			var mock sqlmock.Sqlmock

			if tt.setupDB {
				db, m, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				base.DB = db
				mock = m
				tt.setupMock(mock)
			}

			err := base.Exec(context.Background(), tt.sql, tt.args...)
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}

			if mock != nil {
				assert.NoError(t, mock.ExpectationsWereMet())
			}
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	t.Run("query without connection", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		_, err := base.Query(context.Background(), "SELECT 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection not established")
	})

	t.Run("query success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT year FROM dim_date").
			WillReturnRows(sqlmock.NewRows([]string{"year"}).AddRow(2024).AddRow(2025))

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.Query(context.Background(), "SELECT year FROM dim_date")
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		var years []int
		for rows.Next() {
			var y int
			require.NoError(t, rows.Scan(&y))
			years = append(years, y)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []int{2024, 2025}, years)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

		base := &BaseSQLAdapter{DB: db}
		_, err = base.Query(context.Background(), "SELECT broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute query")
	})
}

func TestBaseSQLAdapter_QueryRow(t *testing.T) {
	base := &BaseSQLAdapter{}
	_, err := base.QueryRow(context.Background(), "SELECT 1")
	require.Error(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	base.DB = db
	row, err := base.QueryRow(context.Background(), "SELECT 1")
	require.NoError(t, err)

	var one int
	require.NoError(t, row.Scan(&one))
	assert.Equal(t, 1, one)
}

func TestBaseSQLAdapter_BeginTx(t *testing.T) {
	base := &BaseSQLAdapter{}
	_, err := base.BeginTx(context.Background())
	require.Error(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	base.DB = db
	tx, err := base.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_TableExistsCommon(t *testing.T) {
	dollar := &dialect.Dialect{Name: "pg", DefaultSchema: "public", Placeholder: dialect.PlaceholderDollar}
	question := &dialect.Dialect{Name: "sf", DefaultSchema: "PUBLIC", Placeholder: dialect.PlaceholderQuestion}

	tests := []struct {
		name    string
		rel     core.Relation
		d       *dialect.Dialect
		query   string
		args    []any
		count   int
		want    bool
		wantErr bool
	}{
		{
			name:  "default schema applied",
			rel:   core.Relation{Name: "dim_date"},
			d:     dollar,
			query: `FROM information_schema.tables\s+WHERE UPPER\(table_schema\) = UPPER\(\$1\) AND UPPER\(table_name\) = UPPER\(\$2\)`,
			args:  []any{"public", "dim_date"},
			count: 1,
			want:  true,
		},
		{
			name:  "database scoped information schema",
			rel:   core.Relation{Database: "MARKET", Schema: "GOLD", Name: "DIM_DATE"},
			d:     question,
			query: `FROM MARKET\.information_schema\.tables`,
			args:  []any{"GOLD", "DIM_DATE"},
			count: 0,
			want:  false,
		},
		{
			name:    "invalid relation",
			rel:     core.Relation{Name: "dim date"},
			d:       question,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			if tt.query != "" {
				mock.ExpectQuery(tt.query).
					WithArgs(tt.args...).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))
			}

			base := &BaseSQLAdapter{DB: db}
			got, err := base.TableExistsCommon(context.Background(), tt.rel, tt.d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
