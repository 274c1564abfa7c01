package mapping

import (
	"math"
	"strconv"
	"strings"
)

// Row is one tabular record: raw cell strings indexed from 0.
type Row []string

// ResolveColumn reads the cell(s) named by def from row. It returns nil when
// nothing usable was found.
//
// A single-column leaf yields the coerced cell value. A multi-column leaf
// yields a []any with the non-nil value of each listed column, in order, or
// nil when all of them were empty.
func ResolveColumn(row Row, startCol int, def ColumnDef) any {
	if !def.Multi {
		if len(def.Columns) == 0 {
			return nil
		}
		return cellValue(row, def.Columns[0]+startCol, def.Type)
	}

	var out []any
	for _, c := range def.Columns {
		if v := cellValue(row, c+startCol, def.Type); v != nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// cellValue coerces row[idx].
//
//   - missing or "" cell: nil
//   - boolean: true for "yes"/"true" (trimmed, any case), false otherwise
//   - list: comma split, each element trimmed
//   - number: float64 when the trimmed cell is a finite number
//   - anything else, including a non-numeric number cell: the trimmed string
//
// A whitespace-only cell is not empty: it resolves to "" for strings.
func cellValue(row Row, idx int, t CellType) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	cell := row[idx]
	if cell == "" {
		return nil
	}

	switch t {
	case TypeBoolean:
		v := strings.ToLower(strings.TrimSpace(cell))
		return v == "yes" || v == "true"

	case TypeList:
		parts := strings.Split(cell, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts

	case TypeNumber:
		if f, ok := parseFinite(cell); ok {
			return f
		}
	}

	return strings.TrimSpace(cell)
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
