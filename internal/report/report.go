// Package report finishes an import run: it writes the success and error
// artifacts, logs every failure and the closing summary, and optionally
// copies the outcomes into a results table.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"itemimport/internal/mapping"
	"itemimport/internal/submit"
)

// Artifact file names inside the output directory.
const (
	SuccessFile = "success.json"
	ErrorFile   = "output.json"
)

// Summary lines logged at the end of a run.
const (
	MsgAllLoaded = "Completed! All items loaded successfully"
	MsgErrors    = "Completed! There were errors"
)

// WriteFiles writes code → node id to success.json and row → error detail to
// output.json under dir, creating dir when needed. Both files are written even
// when empty. Errors are ordered by row.
func WriteFiles(dir string, out *submit.Outcomes) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	success, err := json.Marshal(out.Success())
	if err != nil {
		return fmt.Errorf("encode %s: %w", SuccessFile, err)
	}
	if err := writeJSON(filepath.Join(dir, SuccessFile), success); err != nil {
		return err
	}

	errs := mapping.NewDocument()
	for _, o := range out.List() {
		if !o.OK() {
			errs.Set(strconv.Itoa(o.Row), o.Detail)
		}
	}
	failed, err := errs.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode %s: %w", ErrorFile, err)
	}
	return writeJSON(filepath.Join(dir, ErrorFile), failed)
}

func writeJSON(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format %s: %w", filepath.Base(path), err)
	}
	buf.WriteByte('\n')
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Summarize logs each failure as "Row <n> -> <detail>" and then the closing
// line. It reports whether the run loaded at least one item without errors.
func Summarize(log zerolog.Logger, out *submit.Outcomes) bool {
	for _, o := range out.List() {
		if o.OK() {
			continue
		}
		log.Error().Int("row", o.Row).Str("code", o.Code).Str("status", string(o.Status)).
			Msgf("Row %d -> %s", o.Row, o.DetailString())
	}

	succeeded, failed := out.Counts()
	if succeeded > 0 && failed == 0 {
		log.Info().Int("succeeded", succeeded).Msg(MsgAllLoaded)
		return true
	}
	log.Warn().Int("succeeded", succeeded).Int("failed", failed).Msg(MsgErrors)
	return false
}
