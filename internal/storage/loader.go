package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CopyFn is a backend's bulk insert, usually Repository.CopyFrom.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn per non-empty batch. It returns the rows copyFn reported and
// the first error; a failed batch stops the load. Each flush is logged at
// debug with the running total.
func LoadBatches(
	ctx context.Context,
	log zerolog.Logger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		// copyFn must not retain the batch
		batch = batch[:0]
		if err != nil {
			log.Error().Err(err).Int64("inserted", n).Int64("total", total).Msg("copy failed")
			return err
		}
		batches++
		log.Debug().
			Int("batch", batches).
			Int64("inserted", n).
			Int64("total", total).
			Dur("elapsed", time.Since(start)).
			Msg("batch copied")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				return total, flush()
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// LoadRows copies rows through copyFn in batches of batchSize.
func LoadRows(ctx context.Context, log zerolog.Logger, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	// stops the producer when LoadBatches returns early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any)
	go func() {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return LoadBatches(ctx, log, columns, in, batchSize, copyFn)
}
