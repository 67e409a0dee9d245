package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querydraft/config"
	"querydraft/models"
)

func newSQLite(t *testing.T, storage *ResultsStorage, format string) *SQLExecutor {
	t.Helper()
	exec, err := NewSQLiteService(":memory:", storage, format)
	require.NoError(t, err)
	t.Cleanup(func() { exec.Close() })
	return exec
}

func TestSQLExecutor_SQLite(t *testing.T) {
	exec := newSQLite(t, nil, "none")
	ctx := context.Background()
	assert.True(t, exec.IsConnected(ctx))
	assert.Equal(t, "sqlite", exec.Driver())

	_, err := exec.Execute(ctx, "CREATE TABLE customers (customer_id INTEGER PRIMARY KEY, email TEXT, total_spent REAL)")
	require.NoError(t, err)

	res, err := exec.Execute(ctx, "INSERT INTO customers VALUES (1001, 'sarah.j@email.com', 3450.0), (1045, 'm.chen@email.com', 2890.5)")
	require.NoError(t, err)
	assert.Equal(t, []string{"Status"}, res.Columns)
	assert.Equal(t, "2 row(s) affected", res.Rows[0][0])
	assert.Equal(t, 2, res.RowCount)

	res, err = exec.Execute(ctx, "-- top spenders\nSELECT customer_id, email, total_spent FROM customers ORDER BY total_spent DESC;")
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id", "email", "total_spent"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, int64(1001), res.Rows[0][0])
	assert.Equal(t, "sarah.j@email.com", res.Rows[0][1])
	assert.Equal(t, 3450.0, res.Rows[0][2])
	assert.False(t, res.ExecutedAt.IsZero())
	assert.Empty(t, res.Filename)

	res, err = exec.Execute(ctx, "SELECT * FROM customers WHERE customer_id = 0")
	require.NoError(t, err)
	assert.Equal(t, 0, res.RowCount)
	assert.NotNil(t, res.Rows)

	_, err = exec.Execute(ctx, "SELEC broken")
	assert.Error(t, err)
}

func TestSQLExecutor_ArchivesResults(t *testing.T) {
	storage, err := NewResultsStorage(t.TempDir())
	require.NoError(t, err)
	exec := newSQLite(t, storage, "csv")
	ctx := context.Background()

	res, err := exec.Execute(ctx, "SELECT 1 AS one, 'x' AS letter")
	require.NoError(t, err)
	require.NotEmpty(t, res.Filename)
	assert.Equal(t, ".csv", filepath.Ext(res.Filename))

	file, err := storage.GetResultFile(res.Filename)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "letter"}, file.Columns)
	assert.Equal(t, []interface{}{"1", "x"}, file.Rows[0])
}

func TestResultsStorage_JSON(t *testing.T) {
	storage, err := NewResultsStorage(t.TempDir())
	require.NoError(t, err)

	result := &models.ExecutionResult{
		Columns:    []string{"Status"},
		Rows:       [][]interface{}{{"1 row(s) affected"}},
		RowCount:   1,
		ExecutedAt: time.Date(2025, 1, 7, 14, 22, 15, 0, time.UTC),
	}
	name, err := storage.Save(result, "UPDATE products SET price = 29.99", "json")
	require.NoError(t, err)

	file, err := storage.GetResultFile(name)
	require.NoError(t, err)
	assert.Equal(t, name, file.Filename)
	assert.Equal(t, "UPDATE products SET price = 29.99", file.Query)
	assert.Equal(t, "2025-01-07T14:22:15Z", file.Timestamp)
	assert.Equal(t, 1, file.RowCount)

	files, err := storage.ListResultFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "json", files[0].Format)

	_, err = storage.Save(result, "", "xml")
	assert.Error(t, err)
}

func TestResultsStorage_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewResultsStorage(filepath.Join(dir, "results"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.json"), []byte(`{}`), 0644))

	for _, name := range []string{"../secret.json", "", ".hidden.json", "a/b.json"} {
		_, err := storage.GetResultFile(name)
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}
	_, err = storage.GetResultFile("missing.txt")
	assert.Error(t, err)
}

func TestStubExecutor(t *testing.T) {
	exec := NewStubExecutor(0)
	ctx := context.Background()

	tests := []struct {
		query   string
		columns []string
		count   int
	}{
		{"SELECT * FROM customers;", []string{"customer_id", "first_name", "last_name", "email", "total_spent", "order_count"}, 4},
		{"-- Regenerated query\nselect 1", []string{"customer_id", "first_name", "last_name", "email", "total_spent", "order_count"}, 4},
		{"UPDATE products SET price = 29.99", []string{"Status"}, 1},
		{"  delete from t", []string{"Status"}, 1},
		{"db.customers.find({})", []string{"Result"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := exec.Execute(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, res.Columns)
			assert.Equal(t, tt.count, res.RowCount)
			assert.Len(t, res.Rows, tt.count)
			assert.False(t, res.ExecutedAt.IsZero())
		})
	}
}

func TestStubExecutor_HonorsContext(t *testing.T) {
	exec := NewStubExecutor(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exec.Execute(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLeadingVerb(t *testing.T) {
	assert.Equal(t, "SELECT", LeadingVerb("  select * from t"))
	assert.Equal(t, "WITH", LeadingVerb("-- c\n\nWITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Equal(t, "SELECT", LeadingVerb("(SELECT 1)"))
	assert.Equal(t, "", LeadingVerb("-- only a comment"))
	assert.True(t, ReturnsRows("PRAGMA table_info(t)"))
	assert.False(t, ReturnsRows("INSERT INTO t VALUES (1)"))
}

func TestBuildConnectionString(t *testing.T) {
	cfg := config.SQLServerConfig{Server: "db", Port: "1433", Database: "sales", UserID: "u", Password: "p", Encrypt: true}
	assert.Equal(t, "server=db;port=1433;database=sales;user id=u;password=p;encrypt=true;TrustServerCertificate=true", buildConnectionString(cfg))
	assert.NotContains(t, redactedConnectionString(cfg), "password=p;")

	cfg.UserID = ""
	cfg.Encrypt = false
	assert.Equal(t, "server=db;port=1433;database=sales;trusted_connection=true;encrypt=false", buildConnectionString(cfg))

	_, err := NewSQLServerService(config.SQLServerConfig{}, nil, "none")
	assert.Error(t, err)
}
