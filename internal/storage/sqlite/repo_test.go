package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemimport/internal/storage"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()

	r, closeFn, err := NewRepository(context.Background(), Config{
		DSN:   filepath.Join(t.TempDir(), "results.db"),
		Table: "item_import_results",
	})
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return r
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "  "})
	assert.ErrorContains(t, err, "DSN must not be empty")
}

// TestResultsRoundTrip creates the results table through the registered
// dialect, copies outcome rows and reads them back.
func TestResultsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTemp(t)
	require.NoError(t, storage.EnsureTable(ctx, "sqlite", &wrappedRepo{Repository: r}, storage.ResultsTable("item_import_results")))
	// idempotent
	require.NoError(t, storage.EnsureTable(ctx, "sqlite", &wrappedRepo{Repository: r}, storage.ResultsTable("item_import_results")))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := [][]any{
		{"run-1", 1, "Q1", "node-Q1", "success", nil, now},
		{"run-1", 2, "Q2", nil, "failed", `{"error":"bad"}`, now},
	}
	n, err := r.CopyFrom(ctx, storage.ResultColumns, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var count int
	require.NoError(t, r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM item_import_results WHERE status = 'failed' AND detail = '{"error":"bad"}'`).Scan(&count))
	assert.Equal(t, 1, count)

	var nodeID string
	require.NoError(t, r.db.QueryRowContext(ctx,
		`SELECT node_id FROM item_import_results WHERE row_num = 1`).Scan(&nodeID))
	assert.Equal(t, "node-Q1", nodeID)

	// duplicate primary key rolls the whole batch back
	_, err = r.CopyFrom(ctx, storage.ResultColumns, [][]any{
		{"run-2", 1, "Q1", "n", "success", nil, now},
		{"run-1", 1, "Q1", "n", "success", nil, now},
	})
	require.Error(t, err)
	require.NoError(t, r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM item_import_results WHERE run_id = 'run-2'`).Scan(&count))
	assert.Zero(t, count)
}

func TestCopyFrom_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTemp(t)
	require.NoError(t, r.Exec(ctx, `CREATE TABLE item_import_results (a TEXT, b TEXT)`))

	_, err := r.CopyFrom(ctx, nil, [][]any{{1}})
	assert.ErrorContains(t, err, "columns must not be empty")

	n, err := r.CopyFrom(ctx, []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"only-one"}})
	assert.ErrorContains(t, err, "row length 1 != columns length 2")

	assert.NoError(t, r.Exec(ctx, "   "))
	assert.ErrorContains(t, r.Exec(ctx, "NOT SQL"), "sqlite: exec")
}

func TestRegistrationUsesHook(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	var got Config
	closed := false
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "x.db", Table: "t"})
	require.NoError(t, err)
	assert.Equal(t, Config{DSN: "x.db", Table: "t"}, got)

	repo.Close()
	assert.True(t, closed)
}

func TestDialect(t *testing.T) {
	t.Parallel()

	sql, err := Dialect.CreateTableSQL(storage.ResultsTable("item_import_results"))
	require.NoError(t, err)
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "item_import_results"`)
	assert.Contains(t, sql, `"row_num" INTEGER NOT NULL`)
	assert.Contains(t, sql, `"created_at" TEXT NOT NULL`)
	assert.Contains(t, sql, `"detail" TEXT,`)
}
