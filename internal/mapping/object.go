package mapping

// ResolveObject maps row through an object node's fields, in declaration
// order. Fields that resolve to nothing are left out; nested objects and
// arrays are always present, possibly empty.
func ResolveObject(row Row, startCol int, fields []Field) *Document {
	doc := NewDocument()
	for _, f := range fields {
		setField(doc, f, row, startCol)
	}
	return doc
}

// setField resolves one field into doc. It is shared by the object and row
// mappers, which differ only in name.
func setField(doc *Document, f Field, row Row, startCol int) {
	switch f.Node.Kind {
	case KindLeaf:
		doc.Set(f.Name, ResolveColumn(row, startCol, f.Node.Column))
	case KindLiteral:
		// literals are shared by every row; hand out a private copy
		doc.Set(f.Name, cloneValue(f.Node.Literal))
	case KindObject:
		doc.Set(f.Name, ResolveObject(row, startCol, f.Node.Fields))
	case KindArray:
		doc.Set(f.Name, ResolveArray(row, startCol, f.Node.Elems))
	case KindInvalid:
		// reported at load time
	}
}
