package item

import (
	"errors"
	"fmt"

	"itemimport/internal/mapping"
)

// ErrInvalid marks an item rejected by Validate.
var ErrInvalid = errors.New("invalid question data")

// MinOptions is the smallest usable option list for choice and match items.
const MinOptions = 2

var requiredFields = []string{"code", "title", "template", "template_id"}

// Validate checks option counts for mcq/mtf items and that the mandatory
// fields are present and non-blank. It reports the first problem found.
func Validate(doc *mapping.Document) error {
	typ, _ := doc.Get("type")
	switch typ {
	case TypeMCQ:
		if n := listLen(doc, "options"); n < MinOptions {
			return fmt.Errorf("%w: mcq needs at least %d options, has %d", ErrInvalid, MinOptions, n)
		}
	case TypeMTF:
		if n := listLen(doc, "lhs_options"); n < MinOptions {
			return fmt.Errorf("%w: mtf needs at least %d lhs options, has %d", ErrInvalid, MinOptions, n)
		}
		if n := listLen(doc, "rhs_options"); n < MinOptions {
			return fmt.Errorf("%w: mtf needs at least %d rhs options, has %d", ErrInvalid, MinOptions, n)
		}
	}

	for _, f := range requiredFields {
		v, _ := doc.Get(f)
		if isFalsy(v) {
			return fmt.Errorf("%w: %s is required", ErrInvalid, f)
		}
	}
	return nil
}

func listLen(doc *mapping.Document, key string) int {
	v, _ := doc.Get(key)
	switch t := v.(type) {
	case []any:
		return len(t)
	case []string:
		return len(t)
	default:
		return 0
	}
}

// isFalsy treats absent, "", false and 0 as missing.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	default:
		return false
	}
}
