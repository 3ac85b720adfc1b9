// Package metrics defines the minimal instrumentation surface the
// ingestion pipeline emits to. Backends translate these calls into a
// concrete monitoring system; the pipeline itself never imports one.
package metrics

// Labels are free-form metric dimensions.
type Labels map[string]string

// Backend receives pipeline metrics. Implementations must be safe for
// concurrent use; calls sit on the ingestion hot path and should not
// block on network I/O.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by the engine.
const (
	// FilesTotal counts ingested files, labeled status=ok|error.
	FilesTotal = "ingest_files_total"

	// SheetsTotal counts parsed sheets, labeled status=ok|skipped.
	SheetsTotal = "ingest_sheets_total"

	// RowsTotal counts cleaned data rows.
	RowsTotal = "ingest_rows_total"

	// StageDurationSeconds observes per-stage wall time, labeled
	// stage=parse|infer|clean|profile and status=ok|error.
	StageDurationSeconds = "ingest_stage_duration_seconds"
)

// Nop discards everything. Used when no backend is configured.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}

var _ Backend = Nop{}
