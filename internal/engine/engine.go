// Package engine runs the ingestion pipeline: validate, parse, unify,
// infer, clean, summarize. It exposes two call shapes: Upload turns file
// bytes into a typed Dataset, Profile derives the full metadata bundle
// for an existing Dataset.
//
// The pipeline is sequential CPU work once the bytes are in memory.
// There is no shared mutable state between concurrent uploads; each call
// builds a fresh Dataset. Callers needing cancellation or timeouts wrap
// the call.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"ingest/internal/clean"
	"ingest/internal/dataset"
	"ingest/internal/infer"
	"ingest/internal/metadata"
	"ingest/internal/metrics"
	"ingest/internal/parser"
	"ingest/internal/unify"
)

// Validation and pipeline error kinds. Parser-level kinds
// (ErrUnsupportedFormat, ErrEmptyFile, ErrNoValidHeaders) pass through
// from the parser package.
var (
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
	ErrEmptyDataset = errors.New("no usable rows in any sheet")
)

// DefaultMaxFileSize bounds uploads at 100 MiB.
const DefaultMaxFileSize = 100 << 20

// DefaultSampleSize caps type-inference samples per column.
const DefaultSampleSize = infer.SampleCap

// Config holds the engine's fixed knobs. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// MaxFileSize is the upload size limit in bytes.
	MaxFileSize int64

	// AllowedExtensions is the lowercased extension allow-list.
	AllowedExtensions []string

	// SampleSize caps per-column inference samples.
	SampleSize int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:       DefaultMaxFileSize,
		AllowedExtensions: []string{".csv", ".xlsx", ".xls"},
		SampleSize:        DefaultSampleSize,
	}
}

func (c Config) allows(ext string) bool {
	for _, e := range c.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Engine is the ingestion entry point. Safe for concurrent use: it holds
// only configuration and sinks.
type Engine struct {
	cfg Config
	log *zap.Logger
	met metrics.Backend
}

// New constructs an Engine. logger and backend may be nil; a nop logger
// and nop metrics backend are substituted.
func New(cfg Config, logger *zap.Logger, backend metrics.Backend) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = metrics.Nop{}
	}
	return &Engine{cfg: cfg, log: logger, met: backend}
}

// Upload validates and ingests one file, returning the typed Dataset.
//
// Size and extension are checked before any parsing. Multi-sheet sources
// are unified into a combined default view with per-sheet snapshots
// retained for SelectSheet. Returns ErrEmptyDataset when parsing
// succeeds but yields zero data rows.
func (e *Engine) Upload(data []byte, filename string) (*dataset.Dataset, error) {
	start := time.Now()

	ds, err := e.upload(data, filename)

	status := "ok"
	if err != nil {
		status = "error"
	}
	e.met.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": status})
	e.met.ObserveHistogram(metrics.StageDurationSeconds, time.Since(start).Seconds(),
		metrics.Labels{"stage": "upload", "status": status})

	if err != nil {
		e.log.Warn("upload failed",
			zap.String("file", filename),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return nil, err
	}

	e.met.IncCounter(metrics.RowsTotal, float64(ds.Summary.TotalRows), nil)
	e.log.Info("upload complete",
		zap.String("file", filename),
		zap.String("dataset", ds.ID),
		zap.Int("rows", ds.Summary.TotalRows),
		zap.Int("columns", ds.Summary.TotalColumns),
		zap.Int("sheets", len(ds.Sheets)),
		zap.Duration("elapsed", time.Since(start)))
	return ds, nil
}

func (e *Engine) upload(data []byte, filename string) (*dataset.Dataset, error) {
	if int64(len(data)) > e.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s > %s", ErrFileTooLarge,
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(e.cfg.MaxFileSize)))
	}
	ext := parser.Extension(filename)
	if !e.cfg.allows(ext) {
		return nil, fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, ext)
	}

	parseStart := time.Now()
	sheets, err := parser.Parse(data, filename, e.log)
	e.observeStage("parse", parseStart, err)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	e.met.IncCounter(metrics.SheetsTotal, float64(len(sheets)), metrics.Labels{"status": "ok"})

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var ds *dataset.Dataset
	if len(sheets) == 1 {
		ds, err = e.buildSingle(name, filename, sheets[0])
	} else {
		ds, err = e.buildMulti(name, filename, sheets)
	}
	if err != nil {
		return nil, err
	}
	if ds.Summary.TotalRows == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyDataset)
	}
	return ds, nil
}

// buildSingle runs inference and cleaning for a one-sheet source; no
// unification, no origin tags.
func (e *Engine) buildSingle(name, filename string, sh parser.RawSheet) (*dataset.Dataset, error) {
	raw := unify.SheetRows(sh)

	inferStart := time.Now()
	cols := infer.ColumnsSample(nonBlank(sh.Header), raw, e.cfg.SampleSize)
	e.observeStage("infer", inferStart, nil)

	cleanStart := time.Now()
	rows := clean.Rows(raw, cols)
	e.observeStage("clean", cleanStart, nil)

	return dataset.New(name, filename, cols, rows), nil
}

// buildMulti unifies the sheets into the combined default view and keeps
// a typed snapshot per sheet for later switching.
func (e *Engine) buildMulti(name, filename string, sheets []parser.RawSheet) (*dataset.Dataset, error) {
	u := unify.Sheets(sheets)

	inferStart := time.Now()
	cols := infer.ColumnsSample(u.Columns, u.Rows, e.cfg.SampleSize)
	e.observeStage("infer", inferStart, nil)

	cleanStart := time.Now()
	rows := clean.Rows(u.Rows, cols)
	e.observeStage("clean", cleanStart, nil)

	combined := dataset.Sheet{
		Name:    "Combined",
		Columns: cols,
		Rows:    rows,
		Summary: dataset.ComputeSummary(cols, rows),
	}

	snapshots := make([]dataset.Sheet, 0, len(sheets))
	for _, sh := range sheets {
		raw := unify.SheetRows(sh)
		shCols := infer.ColumnsSample(nonBlank(sh.Header), raw, e.cfg.SampleSize)
		shRows := clean.Rows(raw, shCols)
		snapshots = append(snapshots, dataset.Sheet{
			Name:    sh.Name,
			Columns: shCols,
			Rows:    shRows,
			Summary: dataset.ComputeSummary(shCols, shRows),
		})
	}

	return dataset.NewMultiSheet(name, filename, combined, snapshots), nil
}

// Profile derives the full metadata bundle for an already-ingested
// Dataset. originalSize is the uploaded byte count reported in the file
// facts.
func (e *Engine) Profile(ds *dataset.Dataset, originalSize int64) metadata.Bundle {
	start := time.Now()
	b := metadata.Assemble(ds, originalSize, 0)
	elapsed := time.Since(start)
	b.File.Processing = elapsed
	b.File.ProcessingMS = elapsed.Milliseconds()

	e.observeStage("profile", start, nil)
	e.log.Info("profile complete",
		zap.String("dataset", ds.ID),
		zap.Int("columns", len(b.Columns)),
		zap.Duration("elapsed", elapsed))
	return b
}

func (e *Engine) observeStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.met.ObserveHistogram(metrics.StageDurationSeconds, time.Since(start).Seconds(),
		metrics.Labels{"stage": stage, "status": status})
}

// nonBlank filters empty header cells; blank-named columns carry no
// addressable data.
func nonBlank(header []string) []string {
	out := make([]string, 0, len(header))
	for _, h := range header {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
