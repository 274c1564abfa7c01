// Package mapping turns positional tabular rows into nested item documents
// using a declarative mapping schema.
//
// A schema is a tree of nodes. Each node is exactly one of:
//
//   - leaf:    {"column": 3, "type": "list"} (or the legacy
//     {"col-def": {"column": 3, "type": "list"}}) reads one or more cells;
//   - literal: {"literal": "MEDIUM"} supplies a constant;
//   - object:  {"field": <node>, ...} builds a nested document;
//   - array:   [<node>, ...] builds a list, dropping empty object elements.
//
// The shape is decided once, when the schema is compiled, and stored as an
// explicit Kind. Row mapping is then a single switch per node and never fails:
// missing cells, bad numbers and malformed nodes degrade to omitted fields.
//
// Column references are offsets; the absolute cell index is column+StartCol.
package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is returned (wrapped) when a mapping file cannot be used at all.
var ErrSchema = errors.New("mapping: invalid schema")

// Kind identifies the shape of a schema node.
type Kind uint8

const (
	// KindInvalid marks a node that matched no shape. It never yields a value.
	KindInvalid Kind = iota
	KindLeaf
	KindLiteral
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindLiteral:
		return "literal"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// CellType selects the coercion applied to a cell.
type CellType uint8

const (
	TypeString CellType = iota
	TypeBoolean
	TypeList
	TypeNumber
)

func (t CellType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeList:
		return "list"
	case TypeNumber:
		return "number"
	default:
		return "string"
	}
}

// parseCellType maps the schema "type" string. Unknown names fall back to
// string handling, which is what the reader does for untyped columns.
func parseCellType(s string) (CellType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return TypeString, true
	case "boolean":
		return TypeBoolean, true
	case "list":
		return TypeList, true
	case "number":
		return TypeNumber, true
	default:
		return TypeString, false
	}
}

// ColumnDef describes a leaf: which cells to read and how to coerce them.
type ColumnDef struct {
	// Columns holds one offset for a single-column leaf, or several when Multi.
	Columns []int
	// Multi is true when the schema used a list of columns; the result is then
	// a list of the non-empty cell values.
	Multi bool
	Type  CellType
}

// Node is one compiled schema node. Only the fields for Kind are set.
type Node struct {
	Kind    Kind
	Column  ColumnDef // KindLeaf
	Literal any       // KindLiteral; nil means "defined but null"
	Fields  []Field   // KindObject
	Elems   []Node    // KindArray
}

// Field is a named node inside an object, kept in declaration order.
type Field struct {
	Name string
	Node Node
}

// Schema is a compiled mapping definition. It is immutable after Load and is
// safe for concurrent use.
type Schema struct {
	// StartRow is the first record index (0-based) holding item data. Rows
	// before it are skipped by the caller.
	StartRow int
	// StartCol is added to every column offset in the tree.
	StartCol int
	// Fields are the top-level document fields.
	Fields []Field
}

// Warning reports a schema node that was ignored during compilation.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Leaf is a convenience constructor for a single-column leaf node.
func Leaf(col int, t CellType) Node {
	return Node{Kind: KindLeaf, Column: ColumnDef{Columns: []int{col}, Type: t}}
}

// MultiLeaf builds a leaf reading several columns into one list.
func MultiLeaf(t CellType, cols ...int) Node {
	return Node{Kind: KindLeaf, Column: ColumnDef{Columns: cols, Multi: true, Type: t}}
}

// Lit builds a literal node.
func Lit(v any) Node {
	return Node{Kind: KindLiteral, Literal: v}
}

// Object builds an object node from fields.
func Object(fields ...Field) Node {
	return Node{Kind: KindObject, Fields: fields}
}

// Array builds an array node.
func Array(elems ...Node) Node {
	return Node{Kind: KindArray, Elems: elems}
}

// F pairs a name with a node.
func F(name string, n Node) Field {
	return Field{Name: name, Node: n}
}
