package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemimport/internal/storage"
	_ "itemimport/internal/storage/sqlite"
	"itemimport/internal/submit"
)

func sample() *submit.Outcomes {
	out := submit.NewOutcomes()
	out.Add(submit.Outcome{Row: 10, Code: "Q10", Status: submit.StatusConnectionError, Detail: "Connection error: refused"})
	out.Add(submit.Outcome{Row: 2, Code: "Q2", Status: submit.StatusSuccess, NodeID: "do_2"})
	out.Add(submit.Outcome{Row: 3, Code: "Q3", Status: submit.StatusFailed,
		Detail: submit.ErrorDetail{Error: "Validation Errors", Messages: json.RawMessage(`["bad"]`)}})
	return out
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "itemImport")
	require.NoError(t, WriteFiles(dir, sample()))

	success, err := os.ReadFile(filepath.Join(dir, SuccessFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Q2":"do_2"}`, string(success))

	failed, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"3": {"error": "Validation Errors", "messages": ["bad"]},
		"10": "Connection error: refused"
	}`, string(failed))
	// rows stay in numeric order
	assert.Less(t, strings.Index(string(failed), `"3"`), strings.Index(string(failed), `"10"`))
}

func TestWriteFiles_Empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, WriteFiles(dir, submit.NewOutcomes()))

	for _, name := range []string{SuccessFile, ErrorFile} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(b))
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ok := Summarize(zerolog.New(&buf), sample())
	assert.False(t, ok)

	logs := buf.String()
	assert.Contains(t, logs, `"message":"Row 3 -> {\"error\":\"Validation Errors\",\"messages\":[\"bad\"]}"`)
	assert.Contains(t, logs, `"message":"Row 10 -> Connection error: refused"`)
	assert.Contains(t, logs, MsgErrors)
	assert.NotContains(t, logs, MsgAllLoaded)
}

func TestSummarize_AllLoaded(t *testing.T) {
	t.Parallel()

	out := submit.NewOutcomes()
	out.Add(submit.Outcome{Row: 1, Code: "Q1", Status: submit.StatusSuccess, NodeID: "n"})

	var buf bytes.Buffer
	assert.True(t, Summarize(zerolog.New(&buf), out))
	assert.Contains(t, buf.String(), MsgAllLoaded)
}

// TestSummarize_NothingLoaded matches the original tool: a run with no
// successes is reported as having errors even when nothing failed.
func TestSummarize_NothingLoaded(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.False(t, Summarize(zerolog.New(&buf), submit.NewOutcomes()))
	assert.Contains(t, buf.String(), MsgErrors)
}

func TestRows(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	rows := Rows("run", sample(), at)
	require.Len(t, rows, 3)

	assert.Equal(t, []any{"run", 2, "Q2", "do_2", "success", nil, at.UTC()}, rows[0])
	assert.Equal(t, []any{"run", 3, "Q3", nil, "failed", `{"error":"Validation Errors","messages":["bad"]}`, at.UTC()}, rows[1])
	assert.Equal(t, "connection_error", rows[2][4])
	for _, r := range rows {
		assert.Len(t, r, len(storage.ResultColumns))
	}
}

func TestNewRunID(t *testing.T) {
	t.Parallel()

	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestStore_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{
		Kind:  "sqlite",
		DSN:   filepath.Join(t.TempDir(), "results.db"),
		Table: "item_import_results",
	})
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, storage.EnsureTable(ctx, "sqlite", repo, storage.ResultsTable("item_import_results")))

	n, err := Store(ctx, zerolog.Nop(), repo, NewRunID(), sample())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStore_MissingTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{
		Kind:  "sqlite",
		DSN:   filepath.Join(t.TempDir(), "results.db"),
		Table: "missing",
	})
	require.NoError(t, err)
	defer repo.Close()

	_, err = Store(ctx, zerolog.Nop(), repo, "run", sample())
	assert.ErrorContains(t, err, "store outcomes")
}
