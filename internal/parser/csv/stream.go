// Package csv streams delimited item sheets as parser.Records.
//
// Every physical record is emitted, header rows included; skipping rows
// before the data is left to the caller. Options:
//
//   - comma (string; first rune; "\t" or "tab" for TSV; default ',')
//   - lazy_quotes (bool; default true, hand-edited sheets carry stray quotes)
//   - trim_leading_space (bool; default false)
//   - normalize (bool; default false) NFC-normalizes cell text
//
// A leading UTF-8 BOM is dropped, and UTF-16 input with a BOM is decoded.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"itemimport/internal/config"
	"itemimport/internal/parser"
)

// Stream reads r and sends each record to out in file order. Malformed
// records are reported through onErr and skipped; their index is still
// consumed so later indexes match the file. Stream returns nil at EOF and
// ctx.Err() when cancelled. The caller closes out.
func Stream(
	ctx context.Context,
	r io.Reader,
	opt config.Options,
	out chan<- parser.Record,
	onErr parser.ErrorFunc,
) error {
	cr := csv.NewReader(decoder(r, opt.Bool("normalize", false)))
	cr.Comma = opt.Rune("comma", ',')
	cr.LazyQuotes = opt.Bool("lazy_quotes", true)
	cr.TrimLeadingSpace = opt.Bool("trim_leading_space", false)
	// rows are ragged when trailing option columns are left blank
	cr.FieldsPerRecord = -1

	for index := 0; ; index++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return fmt.Errorf("csv read: %w", err)
			}
			if onErr != nil {
				onErr(index, fmt.Errorf("csv parse: %w", err))
			}
			continue
		}

		select {
		case out <- parser.Record{Index: index, Cells: rec}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadAll collects every record of r. Per-record errors go to onErr.
func ReadAll(ctx context.Context, r io.Reader, opt config.Options, onErr parser.ErrorFunc) ([]parser.Record, error) {
	out := make(chan parser.Record, 64)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		errc <- Stream(ctx, r, opt, out, onErr)
	}()

	var recs []parser.Record
	for rec := range out {
		recs = append(recs, rec)
	}
	return recs, <-errc
}

// decoder strips a byte order mark (decoding UTF-16 when the mark says so)
// and optionally composes text to NFC.
func decoder(r io.Reader, normalize bool) io.Reader {
	var t transform.Transformer = unicode.BOMOverride(transform.Nop)
	if normalize {
		t = transform.Chain(t, norm.NFC)
	}
	return transform.NewReader(r, t)
}
