package mapping

// MapRow builds the item document for one row. It is a pure function of its
// arguments and may be called concurrently.
func MapRow(row Row, startCol int, fields []Field) *Document {
	doc := NewDocument()
	for _, f := range fields {
		setField(doc, f, row, startCol)
	}
	return doc
}

// Map applies the schema to row using the schema's start column.
func (s *Schema) Map(row Row) *Document {
	return MapRow(row, s.StartCol, s.Fields)
}

// Skip reports whether the record at index lies before the schema's data.
func (s *Schema) Skip(index int) bool {
	return index < s.StartRow
}
