package mapping

import "strings"

// ResolveArray maps row through each element node and returns the surviving
// values in order. The result is never nil so it encodes as [] rather than
// null.
//
// Leaf elements are kept when non-nil. Object elements are kept only when
// hasEmptyField reports false; see there for the rule. A literal element has
// no fields of its own, so like an empty object it is always dropped.
func ResolveArray(row Row, startCol int, elems []Node) []any {
	out := make([]any, 0, len(elems))
	for _, e := range elems {
		switch e.Kind {
		case KindLeaf:
			if v := ResolveColumn(row, startCol, e.Column); v != nil {
				out = append(out, v)
			}
		case KindLiteral:
			// dropped
		case KindObject:
			cand := ResolveObject(row, startCol, e.Fields)
			if !hasEmptyField(cand, e.Fields) {
				out = append(out, cand)
			}
		case KindArray:
			if nested := ResolveArray(row, startCol, e.Elems); len(nested) > 0 {
				out = append(out, nested)
			}
		}
	}
	return out
}

// hasEmptyField reports whether any field declared in fields is missing from
// doc, or holds a blank string or an empty list, looking into nested objects.
// It stops at the first such field.
//
// Note this drops a partly filled element, not only a fully blank one: an
// option whose image column is empty is dropped even when its text is set.
// Existing mapping files are written around this (they keep optional cells
// out of array elements), so it stays.
func hasEmptyField(doc *Document, fields []Field) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f.Node.Kind == KindInvalid {
			continue
		}
		v, ok := doc.Get(f.Name)
		if !ok {
			return true
		}
		switch t := v.(type) {
		case *Document:
			if f.Node.Kind == KindObject && hasEmptyField(t, f.Node.Fields) {
				return true
			}
		case string:
			if strings.TrimSpace(t) == "" {
				return true
			}
		case []any:
			if len(t) == 0 {
				return true
			}
		case []string:
			if len(t) == 0 {
				return true
			}
		}
	}
	return false
}
