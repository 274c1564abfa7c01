// Package xlsx streams a worksheet of an Excel workbook as parser.Records,
// with the same contract as the csv reader. Options:
//
//   - sheet (string; default the first sheet)
//   - raw_values (bool; default false) reads unformatted cell values
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"itemimport/internal/config"
	"itemimport/internal/parser"
)

// ErrNoSheet is returned when the workbook has no sheet to read.
var ErrNoSheet = errors.New("xlsx: no sheet")

// Stream reads the configured sheet of the workbook in r and sends every row
// to out. Rows the workbook leaves out entirely are emitted with no cells so
// indexes match the sheet's row numbers (index = row number - 1). The whole
// workbook is buffered since xlsx is a zip archive. The caller closes out.
func Stream(
	ctx context.Context,
	r io.Reader,
	opt config.Options,
	out chan<- parser.Record,
	onErr parser.ErrorFunc,
) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("xlsx open: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := pickSheet(f, opt.String("sheet", ""))
	if err != nil {
		return err
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("xlsx rows %q: %w", sheet, err)
	}
	defer rows.Close()

	colOpts := excelize.Options{RawCellValue: opt.Bool("raw_values", false)}
	for index := 0; rows.Next(); index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cells, err := rows.Columns(colOpts)
		if err != nil {
			if onErr != nil {
				onErr(index, fmt.Errorf("xlsx row: %w", err))
			}
			continue
		}

		select {
		case out <- parser.Record{Index: index, Cells: cells}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("xlsx rows %q: %w", sheet, err)
	}
	return nil
}

func pickSheet(f *excelize.File, want string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrNoSheet
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == want {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q (have %v)", ErrNoSheet, want, sheets)
}
