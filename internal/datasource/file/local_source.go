// Package file reads item files from the local disk.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Input formats recognised by Format.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Local opens one file from disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open returns the file for reading. A context that is already done wins over
// touching the filesystem. Errors keep os.ErrNotExist and friends reachable
// through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Format guesses the input format from a file name or URL path. Spreadsheet
// extensions map to FormatXLSX, everything else is read as CSV.
func Format(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}
