package mssql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemimport/internal/storage"
)

func TestMsIdent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[results]", msIdent("results"))
	assert.Equal(t, "[we]]ird]", msIdent("we]ird"))
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://sa:pw@host:notaport"})
	assert.ErrorContains(t, err, "mssql dsn")
}

func TestCopyFrom_NoRows(t *testing.T) {
	t.Parallel()

	n, err := (&Repository{}).CopyFrom(context.Background(), storage.ResultColumns, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDialect(t *testing.T) {
	t.Parallel()

	sql, err := Dialect.CreateTableSQL(storage.ResultsTable("dbo.item_import_results"))
	require.NoError(t, err)
	assert.Contains(t, sql, "IF OBJECT_ID(N'[dbo].[item_import_results]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dbo].[item_import_results] (")
	assert.Contains(t, sql, "[run_id] NVARCHAR(64) NOT NULL")
	assert.Contains(t, sql, "[code] NVARCHAR(450),")
	assert.Contains(t, sql, "[detail] NVARCHAR(MAX),")
	assert.Contains(t, sql, "[created_at] DATETIME2 NOT NULL")
	assert.Contains(t, sql, "PRIMARY KEY ([run_id], [row_num])")
	assert.True(t, len(sql) > 3 && sql[len(sql)-3:] == "END")
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

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://x", Table: "dbo.t"})
	require.NoError(t, err)
	assert.Equal(t, Config{DSN: "sqlserver://x", Table: "dbo.t"}, got)
	repo.Close()
	assert.True(t, closed)
}
