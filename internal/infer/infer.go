// Package infer classifies raw column values into the dataset type system.
//
// Classification is sample-based and deliberately lenient: it inspects up
// to SampleCap non-empty values per column and declares a type when at
// least MatchThreshold of the sample parses as that type. Precedence is
// fixed (boolean, then number, then date, then string) because downstream
// cleaning, statistics, and rendering all key off the declared type.
//
// All thresholds and literal sets live here as named constants so they can
// be tuned without touching algorithm code.
package infer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ingest/internal/dataset"
)

const (
	// SampleCap bounds how many non-empty values are inspected per column.
	SampleCap = 100

	// MatchThreshold is the fraction of the sample that must parse as a
	// candidate type before the column is declared that type.
	MatchThreshold = 0.80
)

// booleanLiterals is the closed, case-insensitive literal set recognized
// as boolean by both inference and cleaning.
var booleanLiterals = map[string]bool{
	"true": true, "false": false,
	"yes": true, "no": false,
	"是": true, "否": false,
	"1": true, "0": false,
}

// dateShape matches the YYYY-M-D / YYYY/M/D family, optionally followed by
// a time-of-day suffix. A value must match this shape AND parse with a
// known layout to count as a date.
var dateShape = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}([ T]\d{1,2}:\d{2}(:\d{2})?)?$`)

// dateLayouts are tried in order by ParseDate. Go's non-padded reference
// layouts accept both padded and unpadded components.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15:4:5",
	"2006/1/2 15:4:5",
	"2006-1-2T15:4:5",
	"2006-1-2 15:4",
	"2006/1/2 15:4",
}

// ParseBool reports whether s is one of the recognized boolean literals,
// and its truth value when it is.
func ParseBool(s string) (value, ok bool) {
	v, ok := booleanLiterals[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// ParseNumber parses s as a finite float64. Thousands separators are
// tolerated ("1,234.5").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate parses s as a date: it must be date-shaped and parse with one
// of the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !dateShape.MatchString(s) {
		return time.Time{}, false
	}
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateShaped reports whether s merely looks like a date, without requiring
// a valid parse. Used by text statistics pattern detection.
func DateShaped(s string) bool {
	return dateShape.MatchString(strings.TrimSpace(s))
}

// Type classifies a column from its non-empty sample values. Values beyond
// SampleCap are ignored. An empty sample defaults to string.
func Type(samples []string) dataset.Type {
	return TypeSample(samples, SampleCap)
}

// TypeSample is Type with an explicit sample cap, for callers that carry
// the cap in configuration. A cap <= 0 falls back to SampleCap.
func TypeSample(samples []string, sampleCap int) dataset.Type {
	if sampleCap <= 0 {
		sampleCap = SampleCap
	}
	if len(samples) > sampleCap {
		samples = samples[:sampleCap]
	}

	var total, boolN, numN, dateN int
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		total++
		if _, ok := ParseBool(s); ok {
			boolN++
		}
		if _, ok := ParseNumber(s); ok {
			numN++
		}
		if _, ok := ParseDate(s); ok {
			dateN++
		}
	}
	if total == 0 {
		return dataset.TypeString
	}

	threshold := int(math.Ceil(MatchThreshold * float64(total)))
	switch {
	case boolN >= threshold:
		return dataset.TypeBoolean
	case numN >= threshold:
		return dataset.TypeNumber
	case dateN >= threshold:
		return dataset.TypeDate
	default:
		return dataset.TypeString
	}
}

// Columns builds the declared column list for a raw grid: one Column per
// header with inferred type, nullable flag (any empty cell observed),
// uniqueness flag (no non-empty value repeats), and up to five distinct
// example values.
//
// rows are keyed by header name; absent keys count as empty cells.
func Columns(headers []string, rows []map[string]string) []dataset.Column {
	return ColumnsSample(headers, rows, SampleCap)
}

// ColumnsSample is Columns with an explicit per-column sample cap.
func ColumnsSample(headers []string, rows []map[string]string, sampleCap int) []dataset.Column {
	if sampleCap <= 0 {
		sampleCap = SampleCap
	}
	cols := make([]dataset.Column, 0, len(headers))

	for _, h := range headers {
		var (
			samples  []string
			examples []string
			seenEx   = map[string]struct{}{}
			distinct = map[string]struct{}{}
			filled   int
			nullable bool
			unique   = true
		)

		for _, r := range rows {
			v := strings.TrimSpace(r[h])
			if v == "" {
				nullable = true
				continue
			}
			filled++
			if len(samples) < sampleCap {
				samples = append(samples, v)
			}
			if _, dup := distinct[v]; dup {
				unique = false
			}
			distinct[v] = struct{}{}
			if len(examples) < dataset.MaxColumnExamples {
				if _, ok := seenEx[v]; !ok {
					seenEx[v] = struct{}{}
					examples = append(examples, v)
				}
			}
		}
		if filled == 0 {
			unique = false
		}

		cols = append(cols, dataset.Column{
			Name:     h,
			Type:     TypeSample(samples, sampleCap),
			Nullable: nullable,
			Unique:   unique,
			Examples: examples,
		})
	}
	return cols
}
