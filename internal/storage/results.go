package storage

import "itemimport/internal/ddl"

// ResultColumns is the column order of the results table. One row is
// written per submitted item.
var ResultColumns = []string{"run_id", "row_num", "code", "node_id", "status", "detail", "created_at"}

// ResultsTable describes the results table named table.
func ResultsTable(table string) ddl.TableDef {
	return ddl.TableDef{
		FQN: table,
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: "id", PrimaryKey: true},
			{Name: "row_num", Type: "int", PrimaryKey: true},
			{Name: "code", Type: "string", Nullable: true},
			{Name: "node_id", Type: "string", Nullable: true},
			{Name: "status", Type: "string"},
			{Name: "detail", Type: "text", Nullable: true},
			{Name: "created_at", Type: "timestamp"},
		},
	}
}
