// Package item prepares mapped row documents for loading: it injects default
// fields, applies the per-question-type fixups, validates the result and
// removes duplicate items.
package item

import (
	"math/rand/v2"
	"strings"

	"itemimport/internal/mapping"
)

// Question types with type-specific handling.
const (
	TypeFTB = "ftb"
	TypeMCQ = "mcq"
	TypeMTF = "mtf"
)

// DefaultQLevel is applied when a row leaves qlevel empty.
const DefaultQLevel = "MEDIUM"

// Item is one accepted row, ready for submission.
type Item struct {
	// Index is the 0-based record index in the source file. It is also stored
	// in the metadata as "rownum" and keys error reports.
	Index int
	// Row holds the raw cells the item was mapped from.
	Row mapping.Row
	// Metadata is the document sent to the API.
	Metadata *mapping.Document
	// ConceptIDs become "associatedTo" relations on submission.
	ConceptIDs []string
}

// Code returns the item's natural key.
func (it Item) Code() string {
	return stringOf(valueOf(it.Metadata, "code"))
}

// Identifier returns metadata.identifier, used for duplicate detection.
func (it Item) Identifier() string {
	v, _ := it.Metadata.Get("identifier")
	return stringOf(v)
}

// Processor turns a freshly mapped document into an Item. The zero value is
// usable; Owner is normally set to the importing user's id.
type Processor struct {
	// Owner is written as portalOwner on every item.
	Owner string
	// Shuffle permutes option lists that are loaded in random order. Nil uses
	// math/rand/v2.
	Shuffle func(n int, swap func(i, j int))
}

// Process applies defaults and type transforms to doc in place, validates it
// and returns the Item. A validation failure is returned as an error wrapping
// ErrInvalid; doc has still been modified.
func (p *Processor) Process(index int, row mapping.Row, doc *mapping.Document) (Item, error) {
	p.applyDefaults(index, doc)

	switch typ, _ := doc.String("type"); typ {
	case TypeFTB:
		doc.Set("num_answers", countKeys(valueOf(doc, "answer")))
	case TypeMCQ:
		doc.Set("options", p.options(doc, "options", false))
	case TypeMTF:
		// lhs order carries the answer mapping and must not change
		doc.Set("lhs_options", p.options(doc, "lhs_options", false))
		doc.Set("rhs_options", p.options(doc, "rhs_options", true))
	}

	it := Item{
		Index:      index,
		Row:        row,
		Metadata:   doc,
		ConceptIDs: stringList(valueOf(doc, "conceptIds")),
	}
	if err := Validate(doc); err != nil {
		return it, err
	}
	return it, nil
}

func (p *Processor) applyDefaults(index int, doc *mapping.Document) {
	doc.Set("rownum", index)
	if p.Owner != "" {
		doc.Set("portalOwner", p.Owner)
	}
	wrapScalar(doc, "language")
	if title, ok := doc.Get("title"); ok {
		doc.Set("name", title)
	}
	wrapScalar(doc, "gradeLevel")

	if isBlank(valueOf(doc, "identifier")) {
		if code, ok := doc.Get("code"); ok {
			doc.Set("identifier", code)
		}
	}
	if isBlank(valueOf(doc, "qlevel")) {
		doc.Set("qlevel", DefaultQLevel)
	}
}

func (p *Processor) shuffle(n int, swap func(i, j int)) {
	if p.Shuffle != nil {
		p.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// wrapScalar turns a single value into a one-element list. Lists and absent
// fields are left alone.
func wrapScalar(doc *mapping.Document, key string) {
	v, ok := doc.Get(key)
	if !ok {
		return
	}
	switch v.(type) {
	case []any, []string:
		return
	}
	doc.Set(key, []any{v})
}

func valueOf(doc *mapping.Document, key string) any {
	v, _ := doc.Get(key)
	return v
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func countKeys(v any) int {
	switch t := v.(type) {
	case *mapping.Document:
		return t.Len()
	case []any:
		return len(t)
	case []string:
		return len(t)
	default:
		return 0
	}
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 1 {
			return stringOf(t[0])
		}
	}
	return fmtValue(v)
}

// stringList accepts the shapes a concept id column can map to: a list
// column, a multi-column leaf or a single cell.
func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return nonEmpty(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, stringOf(e))
		}
		return nonEmpty(out)
	case string:
		return nonEmpty([]string{t})
	default:
		return nil
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
