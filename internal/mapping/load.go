package mapping

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and compiles a mapping file. JSON and YAML are both accepted.
func LoadFile(path string) (*Schema, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open mapping %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a mapping document of the form
//
//	{"start_row": 1, "start_col": 0, "data": {...}}
//
// and compiles "data" into a Schema. The document is decoded into a yaml.Node
// tree rather than a map so that field declaration order survives.
//
// Load fails only when the document is unreadable, is not an object, has a
// non-integer start_row/start_col, or lacks a "data" object. Nodes inside
// "data" that match no known shape are reported as warnings and ignored.
func Load(r io.Reader) (*Schema, []Warning, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: empty document", ErrSchema)
		}
		return nil, nil, fmt.Errorf("%w: parse: %w", ErrSchema, err)
	}

	root := deref(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%w: top level must be an object", ErrSchema)
	}

	s := &Schema{}
	var err error
	if s.StartRow, err = optionalInt(root, "start_row"); err != nil {
		return nil, nil, err
	}
	if s.StartCol, err = optionalInt(root, "start_col"); err != nil {
		return nil, nil, err
	}

	data := lookup(root, "data")
	if data == nil || data.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("%w: \"data\" must be an object", ErrSchema)
	}

	var warns []Warning
	s.Fields = compileFields(data, "data", &warns)
	return s, warns, nil
}

func optionalInt(root *yaml.Node, key string) (int, error) {
	n := lookup(root, key)
	if n == nil || isNull(n) {
		return 0, nil
	}
	v, ok := intValue(n)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be an integer, got %q", ErrSchema, key, n.Value)
	}
	return v, nil
}

func compileFields(n *yaml.Node, path string, warns *[]Warning) []Field {
	fields := make([]Field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		fields = append(fields, Field{
			Name: name,
			Node: compileNode(n.Content[i+1], path+"."+name, warns),
		})
	}
	return fields
}

// compileNode decides the shape of n. Probing order matters and follows the
// legacy format: col-def, then column, then literal, then plain object.
func compileNode(n *yaml.Node, path string, warns *[]Warning) Node {
	n = deref(n)
	if n == nil {
		*warns = append(*warns, Warning{Path: path, Message: "empty node ignored"})
		return Node{Kind: KindInvalid}
	}

	switch n.Kind {
	case yaml.SequenceNode:
		elems := make([]Node, 0, len(n.Content))
		for i, c := range n.Content {
			p := fmt.Sprintf("%s[%d]", path, i)
			e := compileNode(c, p, warns)
			if e.Kind == KindLiteral {
				*warns = append(*warns, Warning{Path: p, Message: "literal array element has no fields and is always dropped"})
			}
			elems = append(elems, e)
		}
		return Node{Kind: KindArray, Elems: elems}

	case yaml.MappingNode:
		if def := lookup(n, "col-def"); def != nil && !isNull(def) {
			return compileLeaf(deref(def), path+".col-def", warns)
		}
		if lookup(n, "column") != nil {
			return compileLeaf(n, path, warns)
		}
		if lit := lookup(n, "literal"); lit != nil {
			return Node{Kind: KindLiteral, Literal: literalValue(lit)}
		}
		return Node{Kind: KindObject, Fields: compileFields(n, path, warns)}

	default:
		*warns = append(*warns, Warning{
			Path:    path,
			Message: fmt.Sprintf("value %q is not a column, literal, object or array; field ignored", n.Value),
		})
		return Node{Kind: KindInvalid}
	}
}

func compileLeaf(n *yaml.Node, path string, warns *[]Warning) Node {
	invalid := func(msg string) Node {
		*warns = append(*warns, Warning{Path: path, Message: msg})
		return Node{Kind: KindInvalid}
	}

	if n == nil || n.Kind != yaml.MappingNode {
		return invalid("column definition must be an object")
	}
	col := deref(lookup(n, "column"))
	if col == nil {
		return invalid("column definition has no \"column\"")
	}

	var def ColumnDef
	switch col.Kind {
	case yaml.ScalarNode:
		c, ok := intValue(col)
		if !ok {
			return invalid(fmt.Sprintf("column %q is not an integer", col.Value))
		}
		def.Columns = []int{c}
	case yaml.SequenceNode:
		def.Multi = true
		def.Columns = make([]int, 0, len(col.Content))
		for _, e := range col.Content {
			c, ok := intValue(deref(e))
			if !ok {
				return invalid(fmt.Sprintf("column list entry %q is not an integer", e.Value))
			}
			def.Columns = append(def.Columns, c)
		}
	default:
		return invalid("column must be an integer or a list of integers")
	}

	if t := deref(lookup(n, "type")); t != nil && !isNull(t) {
		ct, ok := parseCellType(t.Value)
		if !ok {
			*warns = append(*warns, Warning{
				Path:    path + ".type",
				Message: fmt.Sprintf("unknown type %q; reading as string", t.Value),
			})
		}
		def.Type = ct
	}
	return Node{Kind: KindLeaf, Column: def}
}

// literalValue converts a yaml node into a plain Go value. Objects become
// *Document so literal sub-documents keep their key order too.
func literalValue(n *yaml.Node) any {
	n = deref(n)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return n.Value
		}
		return v
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			out = append(out, literalValue(c))
		}
		return out
	case yaml.MappingNode:
		d := NewDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			d.Set(n.Content[i].Value, literalValue(n.Content[i+1]))
		}
		return d
	default:
		return nil
	}
}

// lookup returns the value node for key in a mapping node.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// deref unwraps document and alias nodes.
func deref(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	n = deref(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// intValue accepts integer scalars and floats with no fractional part (JSON
// writers sometimes emit 3.0).
func intValue(n *yaml.Node) (int, bool) {
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0, false
	}
	// Decoding straight into int would silently truncate 2.5 to 2.
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
