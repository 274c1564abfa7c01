package mapping

import (
	"bytes"
	"encoding/json"
)

// Document is an insertion-ordered, field-name-keyed container for the values
// produced by the row mapper. Field order follows schema declaration order so
// printed and submitted documents are stable across runs.
//
// Values are one of: string, bool, float64, []string, []any, *Document, or a
// literal decoded from the mapping file (int, float64, bool, string, []any,
// *Document). A field is never stored with a nil value; Set(k, nil) is a no-op.
type Document struct {
	keys []string
	vals map[string]any
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{vals: make(map[string]any)}
}

// Set stores v under key. An existing key keeps its original position.
// Setting a nil value is ignored so absent values never appear as null.
func (d *Document) Set(key string, v any) {
	if v == nil {
		return
	}
	if d.vals == nil {
		d.vals = make(map[string]any)
	}
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = v
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// String returns the value under key when it is a string.
func (d *Document) String(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Doc returns the nested Document stored under key, if any.
func (d *Document) Doc(key string) (*Document, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	nd, ok := v.(*Document)
	return nd, ok
}

// Delete removes key, preserving the order of the remaining keys.
func (d *Document) Delete(key string) {
	if d == nil {
		return
	}
	if _, ok := d.vals[key]; !ok {
		return
	}
	delete(d.vals, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of fields.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Map converts the document (recursively) into plain maps and slices. Order is
// lost; use it for comparisons, not for output.
func (d *Document) Map() map[string]any {
	if d == nil {
		return nil
	}
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[k] = plain(d.vals[k])
	}
	return out
}

// Clone returns a deep copy of d. Nested documents and lists are copied;
// scalars are shared.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		keys: make([]string, len(d.keys)),
		vals: make(map[string]any, len(d.vals)),
	}
	copy(out.keys, d.keys)
	for k, v := range d.vals {
		out.vals[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the container values a Document may hold.
func cloneValue(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

func plain(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the fields in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
