package postgres

import (
	"context"
	"strings"

	"itemimport/internal/ddl"
	"itemimport/internal/storage"
)

// newRepository is replaced in tests to avoid real connections.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders results-table DDL for Postgres.
var Dialect = ddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: ddl.DoubleQuote,
	MapType:    mapType,
}

// mapType maps logical column types:
//
//	"id"                  -> VARCHAR(64)
//	"int"/"integer"       -> BIGINT
//	"bool"/"boolean"      -> BOOLEAN
//	"timestamp"           -> TIMESTAMPTZ
//	everything else       -> TEXT
func mapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case "id":
		return "VARCHAR(64)"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BOOLEAN"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDialect("postgres", Dialect)
}
