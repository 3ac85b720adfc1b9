// Command ingest runs the ingestion pipeline over one tabular file and
// prints the result as JSON.
//
// Usage:
//
//	ingest -file data.xlsx                      # print the typed dataset
//	ingest -file data.csv -out metadata -pretty # print the full profile
//	ingest -file data.csv -sheet 1              # print one sheet's view
//	ingest -file data.csv -store -backend sqlite -dsn datasets.db
//
// The DSN may also come from the DSN environment variable. With -dd the
// command reports ingestion metrics to Datadog (credentials from the
// standard DD_* environment variables).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"ingest/internal/dataset"
	"ingest/internal/engine"
	"ingest/internal/metrics"
	"ingest/internal/metrics/datadog"
	"ingest/internal/storage"

	// Register all storage backends; -backend selects one at runtime.
	_ "ingest/internal/storage/all"
)

// backendCloser is the metrics backend surface this command manages.
type backendCloser interface {
	metrics.Backend
	Close() error
}

func main() {
	var (
		file    string
		name    string
		out     string
		sheet   int
		pretty  bool
		store   bool
		backend string
		dsn     string
		useDD   bool
		ddTags  string
		ddJob   string
		verbose bool
	)

	flag.StringVar(&file, "file", "", "path of the file to ingest (required)")
	flag.StringVar(&name, "name", "", "dataset display name (default: file name)")
	flag.StringVar(&out, "out", "dataset", "output shape: dataset or metadata")
	flag.IntVar(&sheet, "sheet", dataset.CombinedView, "sheet index to select (-1 = combined view)")
	flag.BoolVar(&pretty, "pretty", false, "indent the JSON output")
	flag.BoolVar(&store, "store", false, "persist the dataset to the configured backend")
	flag.StringVar(&backend, "backend", "sqlite", "storage backend kind (sqlite, postgres, mssql)")
	flag.StringVar(&dsn, "dsn", "", "storage DSN (overrides env DSN)")
	flag.BoolVar(&useDD, "dd", false, "report metrics to Datadog")
	flag.StringVar(&ddTags, "dd-tags", "", "extra Datadog tags, comma-separated (env:prod,team:data)")
	flag.StringVar(&ddJob, "dd-job", "ingest", "Datadog job tag")
	flag.BoolVar(&verbose, "v", false, "enable verbose logs")
	flag.Parse()

	if file == "" {
		fmt.Fprintln(os.Stderr, "missing required -file")
		flag.Usage()
		os.Exit(2)
	}
	if out != "dataset" && out != "metadata" {
		fatalf("invalid -out %q: want dataset or metadata", out)
	}

	logger := newLogger(verbose)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var sink metrics.Backend = metrics.Nop{}
	if useDD {
		dd, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: ddJob,
			Tags:    datadog.ParseTagsCSV(ddTags),
		})
		if err != nil {
			fatalf("datadog metrics init: %v", err)
		}
		defer closeBackend(dd, logger)
		sink = dd
	}

	data, err := os.ReadFile(file)
	if err != nil {
		fatalf("read %s: %v", file, err)
	}

	eng := engine.New(engine.DefaultConfig(), logger, sink)
	ds, err := eng.Upload(data, file)
	if err != nil {
		fatalf("ingest %s: %v", file, err)
	}
	if name != "" {
		ds.Name = name
	}
	if sheet != dataset.CombinedView {
		if err := ds.SelectSheet(sheet); err != nil {
			fatalf("select sheet %d: %v", sheet, err)
		}
	}

	if store {
		if dsn == "" {
			dsn = os.Getenv("DSN")
		}
		if dsn == "" {
			fatalf("-store requires -dsn or env DSN")
		}
		st, err := storage.Open(ctx, storage.Config{Kind: backend, DSN: dsn})
		if err != nil {
			fatalf("open %s store: %v", backend, err)
		}
		defer st.Close()

		saveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := st.Save(saveCtx, ds); err != nil {
			fatalf("save dataset: %v", err)
		}
		logger.Info("dataset stored",
			zap.String("backend", backend),
			zap.String("dataset", ds.ID))
	}

	var payload any = ds
	if out == "metadata" {
		payload = eng.Profile(ds, int64(len(data)))
	}
	if err := writeJSON(os.Stdout, payload, pretty); err != nil {
		fatalf("write output: %v", err)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fatalf("init logger: %v", err)
		}
		return l
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	l, err := cfg.Build()
	if err != nil {
		fatalf("init logger: %v", err)
	}
	return l
}

func closeBackend(b backendCloser, logger *zap.Logger) {
	if err := b.Close(); err != nil {
		logger.Warn("metrics flush on close failed", zap.Error(err))
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
