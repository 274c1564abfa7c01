// Package ddl is a small, backend-agnostic model for CREATE TABLE statements.
// Columns carry logical types ("string", "int", "timestamp", ...); a Dialect
// maps them to SQL types and renders the statement for one backend.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one column. Name is unquoted; Type is a logical type.
type ColumnDef struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	// Default is a raw SQL expression, e.g. CURRENT_TIMESTAMP.
	Default string
}

// TableDef is a dotted table name ("schema.table" or "table") and its
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect renders a TableDef for a specific SQL backend.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string
	// QuoteIdent quotes a single identifier.
	QuoteIdent func(string) string
	// MapType maps a logical type to the backend's SQL type.
	MapType func(logical string) string
	// Guard wraps the bare CREATE TABLE so it is a no-op when the table
	// exists. quotedFQN is the quoted table name. Nil means the statement is
	// emitted as "CREATE TABLE IF NOT EXISTS".
	Guard func(quotedFQN, create string) string
}

// CreateTableSQL renders t as an idempotent CREATE TABLE:
//
//	CREATE TABLE "t" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  PRIMARY KEY ("pk")
//	);
func (d Dialect) CreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(d.MapType(c.Type))
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	quoted := QuoteFQN(fqn, d.QuoteIdent)
	body := fmt.Sprintf("(\n  %s\n);", strings.Join(cols, ",\n  "))
	if d.Guard == nil {
		return "CREATE TABLE IF NOT EXISTS " + quoted + " " + body, nil
	}
	return d.Guard(quoted, "CREATE TABLE "+quoted+" "+body), nil
}

// QuoteFQN quotes each dotted segment of name, dropping empty segments.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, quote(p))
		}
	}
	return strings.Join(out, ".")
}

// DoubleQuote is the ANSI identifier quoting used by SQLite and Postgres.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
