package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"itemimport/internal/storage"
	"itemimport/internal/submit"
)

// storeBatchSize bounds rows per CopyFrom call.
const storeBatchSize = 500

// NewRunID returns a fresh id stamped on every stored outcome of a run.
func NewRunID() string { return uuid.NewString() }

// Rows converts outcomes to results-table rows in storage.ResultColumns order.
// Empty node ids and details are stored as NULL.
func Rows(runID string, out *submit.Outcomes, at time.Time) [][]any {
	list := out.List()
	rows := make([][]any, 0, len(list))
	for _, o := range list {
		rows = append(rows, []any{
			runID,
			o.Row,
			o.Code,
			nullable(o.NodeID),
			string(o.Status),
			nullable(o.DetailString()),
			at.UTC(),
		})
	}
	return rows
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Store copies the outcomes into repo and returns the number of rows written.
func Store(ctx context.Context, log zerolog.Logger, repo storage.Repository, runID string, out *submit.Outcomes) (int64, error) {
	rows := Rows(runID, out, time.Now())
	n, err := storage.LoadRows(ctx, log, storage.ResultColumns, rows, storeBatchSize, repo.CopyFrom)
	if err != nil {
		return n, fmt.Errorf("store outcomes: %w", err)
	}
	log.Info().Str("run_id", runID).Int64("rows", n).Msg("outcomes stored")
	return n, nil
}
