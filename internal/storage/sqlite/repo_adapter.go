package sqlite

import (
	"context"
	"strings"

	"itemimport/internal/ddl"
	"itemimport/internal/storage"
)

// newRepository is replaced in tests to avoid opening a database.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Dialect renders results-table DDL for SQLite. Types use SQLite affinities;
// timestamps are stored as ISO-8601 text.
var Dialect = ddl.Dialect{
	Name:       "sqlite ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapType:    mapType,
}

func mapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	default:
		return "TEXT"
	}
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDialect("sqlite", Dialect)
}
