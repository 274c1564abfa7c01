package mssql

import (
	"context"
	"strings"

	"itemimport/internal/ddl"
	"itemimport/internal/storage"
)

// newRepository is replaced in tests to avoid real connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders results-table DDL for SQL Server. T-SQL has no
// CREATE TABLE IF NOT EXISTS, so the statement is guarded by OBJECT_ID.
var Dialect = ddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: msIdent,
	MapType:    mapType,
	Guard: func(quotedFQN, create string) string {
		lit := strings.ReplaceAll(quotedFQN, "'", "''")
		return "IF OBJECT_ID(N'" + lit + "', N'U') IS NULL\nBEGIN\n" + create + "\nEND"
	},
}

// mapType maps logical types to SQL Server types. Key columns get bounded
// NVARCHAR since NVARCHAR(MAX) cannot be indexed.
func mapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case "id":
		return "NVARCHAR(64)"
	case "string":
		return "NVARCHAR(450)"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDialect("mssql", Dialect)
}
