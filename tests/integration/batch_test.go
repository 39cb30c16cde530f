package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/batchline/internal/checkpoint"
	"github.com/BartekS5/batchline/internal/config"
	"github.com/BartekS5/batchline/internal/job"
	"github.com/BartekS5/batchline/pkg/database"
)

// These tests run against a live SQL Server and are skipped when no
// connection string is configured. They expect the customer, [transaction]
// and batch_staging tables to exist.

func connect(t *testing.T) *sql.DB {
	t.Helper()

	env := config.LoadEnv()
	if env.SQLConnString == "" {
		t.Skip("SQL_CONNECTION_STRING not set, skipping integration test")
	}
	db, err := database.ConnectSQL(env.SQLConnString)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func cleanupTransactions(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`DELETE FROM [transaction] WHERE customer_number LIKE 'it-%'`)
	require.NoError(t, err)
}

func TestImportThenExport(t *testing.T) {
	db := connect(t)
	cleanupTransactions(t, db)
	t.Cleanup(func() { cleanupTransactions(t, db) })

	dir := t.TempDir()
	input := filepath.Join(dir, "transaction.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"customerNumber;number;transactionDate;amount\n"+
			"it-1;tx-1;2024-01-01;4.00\n"+
			"it-1;tx-2;2024-01-02;6.00\n"), 0o644))

	store, err := checkpoint.NewFileStore(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)

	err = job.Import(context.Background(), job.ImportConfig{
		DB: db, InputFile: input, Store: store,
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM [transaction] WHERE customer_number = 'it-1'`).Scan(&count))
	assert.Equal(t, 2, count)

	// Re-running the import upserts instead of duplicating.
	err = job.Import(context.Background(), job.ImportConfig{
		DB: db, InputFile: input, Store: store,
	})
	require.NoError(t, err)
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM [transaction] WHERE customer_number = 'it-1'`).Scan(&count))
	assert.Equal(t, 2, count)

	err = job.Export(context.Background(), job.ExportConfig{
		DB: db, OutputDir: dir, Store: store,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "simple-export.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "it-1;tx-1;2024-01-01;4.00")
}

func TestStagingStageAndProcess(t *testing.T) {
	db := connect(t)
	_, err := db.Exec(`DELETE FROM batch_staging WHERE job_id = 'it-staging'`)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec(`DELETE FROM batch_staging WHERE job_id = 'it-staging'`)
	})

	dir := t.TempDir()
	input := filepath.Join(dir, "staging.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"jobId;value\nit-staging;alpha\nit-staging;beta\n"), 0o644))

	store, err := checkpoint.NewFileStore(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)

	err = job.Stage(context.Background(), job.StagingConfig{
		DB: db, InputFile: input, Store: store,
	})
	require.NoError(t, err)

	var unprocessed int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM batch_staging WHERE job_id = 'it-staging' AND processed = 0`).Scan(&unprocessed))
	assert.Equal(t, 2, unprocessed)

	err = job.Process(context.Background(), job.StagingConfig{DB: db})
	require.NoError(t, err)

	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM batch_staging WHERE job_id = 'it-staging' AND processed = 0`).Scan(&unprocessed))
	assert.Equal(t, 0, unprocessed)
}
