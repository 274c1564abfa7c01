// Package parser holds the record type shared by the tabular readers.
package parser

// Record is one row of a source sheet. Index is 0-based over every record in
// the file, header rows included, so it lines up with the mapping's start_row.
type Record struct {
	Index int
	Cells []string
}

// ErrorFunc receives a recoverable per-record error. The reader skips the
// record and continues.
type ErrorFunc func(index int, err error)
