// Package metadata aggregates everything derived about a dataset into
// one read-only bundle: file facts, structure, enhanced columns,
// quality, per-type statistics, sheet facts, previews, semantics, and
// visualization hints.
//
// Assembly is pure aggregation. Nothing here mutates the dataset, and
// every field is recomputable from the dataset's columns and rows.
package metadata

import (
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ingest/internal/dataset"
	"ingest/internal/quality"
	"ingest/internal/semantic"
	"ingest/internal/stats"
)

// PreviewCap bounds each preview slice (head, random, representative).
const PreviewCap = 5

// FileInfo carries facts about the ingested source file.
type FileInfo struct {
	Name         string        `json:"name"`
	SizeBytes    int64         `json:"size_bytes"`
	Size         string        `json:"size"`
	Extension    string        `json:"extension"`
	ProcessingMS int64         `json:"processing_ms"`
	Processing   time.Duration `json:"-"`
}

// Structure mirrors the dataset summary plus the sheet count.
type Structure struct {
	TotalRows      int `json:"total_rows"`
	TotalColumns   int `json:"total_columns"`
	StringColumns  int `json:"string_columns"`
	NumberColumns  int `json:"number_columns"`
	DateColumns    int `json:"date_columns"`
	BooleanColumns int `json:"boolean_columns"`
	MissingValues  int `json:"missing_values"`
	DuplicateRows  int `json:"duplicate_rows"`
	SheetCount     int `json:"sheet_count"`
}

// ColumnStats holds whichever per-type summary applies to a column.
// Exactly one pointer is set when the column had any values.
type ColumnStats struct {
	Numeric *stats.Numeric `json:"numeric,omitempty"`
	Text    *stats.Text    `json:"text,omitempty"`
	Date    *stats.Date    `json:"date,omitempty"`
}

// EnhancedColumn is the declared column plus its statistics and
// semantic tag.
type EnhancedColumn struct {
	dataset.Column
	Stats    ColumnStats         `json:"stats"`
	Semantic semantic.Annotation `json:"semantic"`
}

// Statistics groups every column's summary by its inferred type.
type Statistics struct {
	Numeric map[string]stats.Numeric `json:"numeric,omitempty"`
	Text    map[string]stats.Text    `json:"text,omitempty"`
	Date    map[string]stats.Date    `json:"date,omitempty"`
}

// SheetFact describes one source sheet.
type SheetFact struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Purpose string `json:"purpose"`
}

// SheetRelation lists the column names two sheets share.
type SheetRelation struct {
	Left          string   `json:"left"`
	Right         string   `json:"right"`
	SharedColumns []string `json:"shared_columns"`
}

// Sheets carries multi-sheet facts. Nil in the bundle for single-sheet
// sources.
type Sheets struct {
	Count     int             `json:"count"`
	Facts     []SheetFact     `json:"facts"`
	Relations []SheetRelation `json:"relations,omitempty"`
}

// Preview holds three small row samples.
type Preview struct {
	Head           []dataset.Row `json:"head"`
	Random         []dataset.Row `json:"random"`
	Representative []dataset.Row `json:"representative"`
}

// Semantics bundles per-column annotations with detected domains.
type Semantics struct {
	Annotations []semantic.Annotation `json:"annotations"`
	Domains     []string              `json:"domains"`
}

// Visualization suggests chart types and the columns worth plotting.
type Visualization struct {
	ChartTypes []string `json:"chart_types"`
	KeyColumns []string `json:"key_columns"`
}

// Bundle is the full derived description of one dataset.
type Bundle struct {
	DatasetID     string           `json:"dataset_id"`
	Name          string           `json:"name"`
	GeneratedAt   time.Time        `json:"generated_at"`
	File          FileInfo         `json:"file"`
	Structure     Structure        `json:"structure"`
	Columns       []EnhancedColumn `json:"columns"`
	Quality       quality.Report   `json:"quality"`
	Statistics    Statistics       `json:"statistics"`
	Sheets        *Sheets          `json:"sheets,omitempty"`
	Preview       Preview          `json:"preview"`
	Semantics     Semantics        `json:"semantics"`
	Visualization Visualization    `json:"visualization"`
}

// Assemble builds the bundle for the dataset's active view.
// originalSize is the uploaded byte count; processing is how long the
// upload pipeline took.
func Assemble(ds *dataset.Dataset, originalSize int64, processing time.Duration) Bundle {
	cols, rows := ds.Columns, ds.Rows

	annotations := semantic.Annotate(cols, rows)
	st, perCol := computeStatistics(cols, rows)

	b := Bundle{
		DatasetID:   ds.ID,
		Name:        ds.Name,
		GeneratedAt: time.Now().UTC(),
		File: FileInfo{
			Name:         ds.SourceFile,
			SizeBytes:    originalSize,
			Size:         humanize.Bytes(uint64(originalSize)),
			Extension:    strings.ToLower(filepath.Ext(ds.SourceFile)),
			ProcessingMS: processing.Milliseconds(),
			Processing:   processing,
		},
		Structure: Structure{
			TotalRows:      ds.Summary.TotalRows,
			TotalColumns:   ds.Summary.TotalColumns,
			StringColumns:  ds.Summary.StringColumns,
			NumberColumns:  ds.Summary.NumberColumns,
			DateColumns:    ds.Summary.DateColumns,
			BooleanColumns: ds.Summary.BooleanColumns,
			MissingValues:  ds.Summary.MissingValues,
			DuplicateRows:  ds.Summary.DuplicateRows,
			SheetCount:     len(ds.Sheets),
		},
		Quality:    quality.Analyze(cols, rows),
		Statistics: st,
		Sheets:     sheetFacts(ds),
		Preview:    preview(rows),
		Semantics: Semantics{
			Annotations: annotations,
			Domains:     semantic.Domains(cols),
		},
	}

	b.Columns = make([]EnhancedColumn, 0, len(cols))
	for i, c := range cols {
		b.Columns = append(b.Columns, EnhancedColumn{
			Column:   c,
			Stats:    perCol[c.Name],
			Semantic: annotations[i],
		})
	}

	b.Visualization = suggestCharts(cols, annotations)
	return b
}

// computeStatistics runs the per-type summaries for every column and
// returns both the grouped view and a per-column lookup.
func computeStatistics(cols []dataset.Column, rows []dataset.Row) (Statistics, map[string]ColumnStats) {
	var st Statistics
	perCol := make(map[string]ColumnStats, len(cols))

	for _, c := range cols {
		var cs ColumnStats
		switch c.Type {
		case dataset.TypeNumber:
			var values []float64
			for _, r := range rows {
				if f, ok := r[c.Name].Num(); ok {
					values = append(values, f)
				}
			}
			if s, ok := stats.NumericStats(values); ok {
				cs.Numeric = &s
				if st.Numeric == nil {
					st.Numeric = make(map[string]stats.Numeric)
				}
				st.Numeric[c.Name] = s
			}
		case dataset.TypeDate:
			var values []time.Time
			var raws []string
			for _, r := range rows {
				if t, ok := r[c.Name].Time(); ok {
					values = append(values, t)
					if len(raws) < stats.FormatSampleCap {
						raws = append(raws, renderDate(t))
					}
				}
			}
			if s, ok := stats.DateStats(values, raws); ok {
				cs.Date = &s
				if st.Date == nil {
					st.Date = make(map[string]stats.Date)
				}
				st.Date[c.Name] = s
			}
		default:
			// Strings, booleans, and anything else summarize as text over
			// the displayed non-missing values.
			var values []string
			for _, r := range rows {
				v := r[c.Name]
				if dataset.CellMissing(v) {
					continue
				}
				values = append(values, v.Display())
			}
			if s, ok := stats.TextStats(values); ok {
				cs.Text = &s
				if st.Text == nil {
					st.Text = make(map[string]stats.Text)
				}
				st.Text[c.Name] = s
			}
		}
		perCol[c.Name] = cs
	}
	return st, perCol
}

// renderDate produces the canonical literal a cleaned date would print
// as. Raw source strings are not retained past cleaning, so format
// detection works over these canonical renderings.
func renderDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// sheetPurposeKeywords map sheet-name fragments to an inferred role.
var sheetPurposeKeywords = []struct {
	purpose string
	words   []string
}{
	{"summary", []string{"summary", "overview", "total", "pivot", "report"}},
	{"reference", []string{"lookup", "ref", "dict", "mapping", "legend"}},
}

func sheetPurpose(name string) string {
	lower := strings.ToLower(name)
	for _, fam := range sheetPurposeKeywords {
		for _, w := range fam.words {
			if strings.Contains(lower, w) {
				return fam.purpose
			}
		}
	}
	return "data"
}

// sheetFacts derives per-sheet counts, purposes, and shared-column
// relations. Returns nil for single-sheet datasets.
func sheetFacts(ds *dataset.Dataset) *Sheets {
	if len(ds.Sheets) < 2 {
		return nil
	}

	out := &Sheets{Count: len(ds.Sheets)}
	names := make([][]string, len(ds.Sheets))
	for i, sh := range ds.Sheets {
		var cols []string
		for _, c := range sh.Columns {
			if c.Name != dataset.SheetTag {
				cols = append(cols, c.Name)
			}
		}
		names[i] = cols
		out.Facts = append(out.Facts, SheetFact{
			Name:    sh.Name,
			Rows:    sh.Summary.TotalRows,
			Columns: len(cols),
			Purpose: sheetPurpose(sh.Name),
		})
	}

	for i := 0; i < len(ds.Sheets); i++ {
		for j := i + 1; j < len(ds.Sheets); j++ {
			shared := intersect(names[i], names[j])
			if len(shared) == 0 {
				continue
			}
			out.Relations = append(out.Relations, SheetRelation{
				Left:          ds.Sheets[i].Name,
				Right:         ds.Sheets[j].Name,
				SharedColumns: shared,
			})
		}
	}
	return out
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range b {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// preview samples the rows three ways: the head, a deterministic
// pseudo-random pick, and the most completely filled rows.
func preview(rows []dataset.Row) Preview {
	var p Preview

	n := len(rows)
	head := n
	if head > PreviewCap {
		head = PreviewCap
	}
	p.Head = append(p.Head, rows[:head]...)

	// Seed from the row count so repeated profiling of the same dataset
	// yields the same sample.
	rng := rand.New(rand.NewSource(int64(n)))
	perm := rng.Perm(n)
	for _, idx := range perm {
		if len(p.Random) == PreviewCap {
			break
		}
		p.Random = append(p.Random, rows[idx])
	}

	type scored struct {
		idx    int
		filled int
	}
	ranked := make([]scored, 0, n)
	for i, r := range rows {
		f := 0
		for k, v := range r {
			if k == dataset.SheetTag {
				continue
			}
			if !dataset.CellMissing(v) {
				f++
			}
		}
		ranked = append(ranked, scored{i, f})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].filled > ranked[j].filled })
	for _, s := range ranked {
		if len(p.Representative) == PreviewCap {
			break
		}
		p.Representative = append(p.Representative, rows[s.idx])
	}
	return p
}

// suggestCharts proposes chart types from the column-type mix and ranks
// the key columns: unique columns, then date columns, then the first
// few numeric columns.
func suggestCharts(cols []dataset.Column, annotations []semantic.Annotation) Visualization {
	var numeric, date, categorical int
	for _, c := range cols {
		switch c.Type {
		case dataset.TypeNumber:
			numeric++
		case dataset.TypeDate:
			date++
		default:
			categorical++
		}
	}

	var charts []string
	if date > 0 && numeric > 0 {
		charts = append(charts, "line", "area")
	}
	if categorical > 0 && numeric > 0 {
		charts = append(charts, "bar")
	}
	if categorical > 0 {
		charts = append(charts, "pie")
	}
	if numeric >= 2 {
		charts = append(charts, "scatter")
	}
	charts = append(charts, "table")

	var keys []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			keys = append(keys, name)
		}
	}
	for i, c := range cols {
		if c.Unique || annotations[i].Category == semantic.CategoryIdentifier {
			add(c.Name)
		}
	}
	for _, c := range cols {
		if c.Type == dataset.TypeDate {
			add(c.Name)
		}
	}
	added := 0
	for _, c := range cols {
		if c.Type == dataset.TypeNumber && added < 3 {
			if _, ok := seen[c.Name]; !ok {
				added++
			}
			add(c.Name)
		}
	}
	return Visualization{ChartTypes: charts, KeyColumns: keys}
}
