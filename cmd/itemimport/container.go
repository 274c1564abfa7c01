package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"itemimport/internal/api"
	"itemimport/internal/config"
	"itemimport/internal/datasource"
	"itemimport/internal/datasource/file"
	"itemimport/internal/datasource/httpds"
	"itemimport/internal/item"
	"itemimport/internal/logging"
	"itemimport/internal/mapping"
	"itemimport/internal/metrics"
	"itemimport/internal/parser"
	csvparser "itemimport/internal/parser/csv"
	xlsxparser "itemimport/internal/parser/xlsx"
	"itemimport/internal/report"
	"itemimport/internal/storage"
	"itemimport/internal/submit"
)

// streamFn is the shared signature of the sheet readers.
type streamFn func(ctx context.Context, r io.Reader, opt config.Options, out chan<- parser.Record, onErr parser.ErrorFunc) error

// Test seams.
var (
	loadSchemaFn = mapping.LoadFile
	newUpdaterFn = func(cfg *config.Config) submit.Updater {
		return api.NewClient(newHTTPClient(cfg), cfg.Endpoint(), cfg.API.UserID)
	}
	newRepositoryFn = storage.New
)

// runResult summarizes a finished run.
type runResult struct {
	parsed     int
	invalid    int
	duplicates int
	items      []item.Item
	outcomes   *submit.Outcomes
	// ok is false when any item failed or nothing was loaded.
	ok bool
}

// runImport executes one import: mapping, read, process, dedup, then either
// a dry-run print to stdout or submission and reporting. Record-level
// problems are logged and counted; only setup and I/O failures are returned.
func runImport(ctx context.Context, cfg *config.Config, log zerolog.Logger, stdout io.Writer) (*runResult, error) {
	job := cfg.Metrics.Job
	flush := setupMetrics(cfg.Metrics, log)
	defer flush()

	start := time.Now()
	schema, warns, err := loadSchemaFn(cfg.Run.Mapping)
	metrics.RecordStep(job, logging.StageMapping, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	mlog := logging.Stage(log, logging.StageMapping)
	for _, w := range warns {
		mlog.Warn().Str("path", w.Path).Msg(w.Message)
	}

	start = time.Now()
	res, err := readItems(ctx, cfg, schema, log)
	metrics.RecordStep(job, logging.StageReader, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	items, dups := item.Dedup(res.items)
	res.items, res.duplicates = items, dups
	log.Info().
		Int("parsed", res.parsed).Int("invalid", res.invalid).Int("duplicates", dups).
		Msgf("Parsed total %d records, invalid records %d, duplicates %d", res.parsed, res.invalid, dups)
	metrics.RecordRecords(job, "parsed", int64(res.parsed))
	metrics.RecordRecords(job, "invalid", int64(res.invalid))
	metrics.RecordRecords(job, "duplicates", int64(dups))

	if cfg.Run.DryRun {
		return res, printItems(stdout, res.items)
	}

	start = time.Now()
	res.outcomes = submitItems(ctx, cfg, log, res.items)
	metrics.RecordStep(job, logging.StageSubmit, nil, time.Since(start))

	succeeded, failed := res.outcomes.Counts()
	metrics.RecordRecords(job, "submitted", int64(len(res.items)))
	metrics.RecordRecords(job, "succeeded", int64(succeeded))
	metrics.RecordRecords(job, "failed", int64(failed))

	start = time.Now()
	err = finish(ctx, cfg, log, res)
	metrics.RecordStep(job, logging.StageReport, err, time.Since(start))
	return res, err
}

// readItems streams the sheet and turns every data row into a validated
// item. Invalid rows are counted and logged, never fatal.
func readItems(ctx context.Context, cfg *config.Config, schema *mapping.Schema, log zerolog.Logger) (*runResult, error) {
	rlog := logging.Stage(log, logging.StageReader)
	plog := logging.Stage(log, logging.StageProcess)

	src, kind := openSource(cfg)
	stream, err := pickReader(kind)
	if err != nil {
		return nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Run.File, err)
	}
	defer rc.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recs := make(chan parser.Record, 256)
	errc := make(chan error, 1)
	go func() {
		defer close(recs)
		errc <- stream(ctx, rc, cfg.Parser.Options, recs, func(index int, err error) {
			rlog.Warn().Int("row", index).Err(err).Msg("skipping malformed record")
		})
	}()

	proc := &item.Processor{Owner: cfg.Run.User}
	res := &runResult{}
	for rec := range recs {
		if schema.Skip(rec.Index) {
			continue
		}
		res.parsed++

		row := mapping.Row(rec.Cells)
		doc := schema.Map(row)
		it, err := proc.Process(rec.Index, row, doc)
		if err != nil {
			res.invalid++
			plog.Warn().Int("row", rec.Index).Str("code", it.Code()).
				Msgf("Invalid question data [Row: %d, Code: %s]", rec.Index, it.Code())
			continue
		}
		res.items = append(res.items, it)
	}
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.Run.File, err)
	}
	return res, nil
}

// openSource picks a local or HTTP source for run.file and the sheet format,
// honouring parser.kind over the file extension.
func openSource(cfg *config.Config) (datasource.Source, string) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Parser.Kind))
	if kind == "" {
		kind = file.Format(cfg.Run.File)
	}
	if httpds.IsURL(cfg.Run.File) {
		return httpds.NewSource(newHTTPClient(cfg), cfg.Run.File), kind
	}
	return file.NewLocal(cfg.Run.File), kind
}

func pickReader(kind string) (streamFn, error) {
	switch kind {
	case file.FormatCSV:
		return csvparser.Stream, nil
	case file.FormatXLSX:
		return xlsxparser.Stream, nil
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", kind)
	}
}

func newHTTPClient(cfg *config.Config) *httpds.Client {
	return httpds.NewClient(httpds.Config{
		Timeout:            cfg.API.Timeout,
		MaxRetries:         cfg.API.MaxRetries,
		InsecureSkipVerify: cfg.API.InsecureSkipVerify,
		BaseHeaders:        http.Header{"User-Agent": []string{"itemimport"}},
	})
}

// printItems writes one compact JSON document per line.
func printItems(w io.Writer, items []item.Item) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it.Metadata); err != nil {
			return fmt.Errorf("print item %s: %w", it.Code(), err)
		}
	}
	return nil
}

func submitItems(ctx context.Context, cfg *config.Config, log zerolog.Logger, items []item.Item) *submit.Outcomes {
	sl := logging.Stage(log, logging.StageSubmit)

	// log roughly every 10% so big runs stay readable
	var lastDecile atomic.Int32
	p := &submit.Pipeline{
		Client:      newUpdaterFn(cfg),
		Concurrency: cfg.API.Concurrency,
		Log:         sl,
		Job:         cfg.Metrics.Job,
		Progress: func(done, total int) {
			decile := int32(done * 10 / total)
			if prev := lastDecile.Load(); decile > prev && lastDecile.CompareAndSwap(prev, decile) {
				sl.Info().Int("done", done).Int("total", total).
					Msgf("progress %.0f%%", float64(done)*100/float64(total))
			}
		},
	}
	sl.Info().Int("items", len(items)).Str("endpoint", cfg.Endpoint()).Msg("submitting")
	return p.Run(ctx, items)
}

// finish writes the artifacts, logs the summary and stores the outcomes.
func finish(ctx context.Context, cfg *config.Config, log zerolog.Logger, res *runResult) error {
	rlog := logging.Stage(log, logging.StageReport)
	if err := report.WriteFiles(cfg.Run.OutputDir, res.outcomes); err != nil {
		return err
	}
	res.ok = report.Summarize(rlog, res.outcomes)

	if cfg.Results.Kind == "" {
		return nil
	}
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:  cfg.Results.Kind,
		DSN:   cfg.Results.DSN,
		Table: cfg.Results.Table,
	})
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer repo.Close()

	if cfg.Results.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg.Results.Kind, repo, storage.ResultsTable(cfg.Results.Table)); err != nil {
			return fmt.Errorf("results table: %w", err)
		}
	}
	_, err = report.Store(ctx, rlog, repo, report.NewRunID(), res.outcomes)
	return err
}
