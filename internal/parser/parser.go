// Package parser extracts raw 2-D cell grids from uploaded file bytes.
//
// Supported sources:
//   - .csv: one synthetic sheet; charset is detected (UTF-8/UTF-16 BOM,
//     Windows-1252 fallback for non-UTF-8 bytes).
//   - .xlsx: one grid per workbook sheet via excelize.
//   - .xls: tried as a ZIP-based workbook first; legacy files that are
//     really HTML <table> exports (a common shape in the wild) fall back
//     to HTML-table extraction.
//
// Fully-blank rows (all cells empty after trimming) are dropped for every
// source, CSV included; the header is the first non-blank row. A sheet
// that fails to parse is skipped with a logged warning; the operation as a
// whole fails only when no sheet parses.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Error kinds surfaced to callers. Sheet-level failures inside multi-sheet
// sources are recoverable and never escape Parse directly; they are logged
// and only reported when every sheet failed.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file contains no extractable rows")
	ErrNoValidHeaders    = errors.New("header row contains no column names")
)

// RawSheet is one extracted grid: a header row plus data rows, all
// untyped strings. Data rows are aligned to the header width.
type RawSheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Parse extracts raw sheets from file bytes. The declared file name
// selects the format by extension. logger may be nil.
func Parse(data []byte, filename string, logger *zap.Logger) ([]RawSheet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch Extension(filename) {
	case ".csv":
		sheet, err := parseCSV(data)
		if err != nil {
			return nil, err
		}
		return []RawSheet{sheet}, nil
	case ".xlsx":
		return parseWorkbook(data, logger)
	case ".xls":
		return parseXLS(data, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Extension returns the lowercased file extension.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseCSV reads the whole byte slice as one synthetic sheet named after
// the CSV convention: header is the first non-blank row.
func parseCSV(data []byte) (RawSheet, error) {
	decoded, err := decodeCharset(data)
	if err != nil {
		return RawSheet{}, fmt.Errorf("decode csv bytes: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1 // width is validated against the header below
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RawSheet{}, fmt.Errorf("read csv: %w", err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return RawSheet{}, ErrEmptyFile
	}

	// The header is the literal first record; only data rows are subject
	// to blank-row dropping.
	header := records[0]

	var rows [][]string
	for _, rec := range records[1:] {
		if blankRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}

	if countNonBlank(header) == 0 {
		if len(rows) == 0 {
			// Nothing but whitespace anywhere.
			return RawSheet{}, ErrEmptyFile
		}
		return RawSheet{}, ErrNoValidHeaders
	}

	return RawSheet{
		Name:   "Sheet1",
		Header: uniquifyHeader(header),
		Rows:   alignRows(rows, len(header)),
	}, nil
}

// gridToSheet converts a raw cell matrix into a RawSheet: drops blank
// rows, takes the first remaining row as header, aligns the rest.
func gridToSheet(name string, grid [][]string) (RawSheet, error) {
	var kept [][]string
	for _, rec := range grid {
		trimmed := make([]string, len(rec))
		for i, c := range rec {
			trimmed[i] = strings.TrimSpace(c)
		}
		if blankRow(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}

	if len(kept) == 0 {
		return RawSheet{}, ErrEmptyFile
	}
	header := kept[0]
	if countNonBlank(header) == 0 {
		return RawSheet{}, ErrNoValidHeaders
	}

	return RawSheet{
		Name:   name,
		Header: uniquifyHeader(header),
		Rows:   alignRows(kept[1:], len(header)),
	}, nil
}

// uniquifyHeader suffixes repeated header names ("a", "a" becomes "a",
// "a_2") the way spreadsheet importers do, so name-keyed rows downstream
// never collapse two columns onto one key. Blank names pass through; they
// are filtered later.
func uniquifyHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		n, ok := taken[name]
		if !ok {
			taken[name] = 1
			out[i] = name
			continue
		}
		cand := fmt.Sprintf("%s_%d", name, n+1)
		for {
			if _, clash := taken[cand]; !clash {
				break
			}
			n++
			cand = fmt.Sprintf("%s_%d", name, n+1)
		}
		taken[name] = n + 1
		taken[cand] = 1
		out[i] = cand
	}
	return out
}

// alignRows pads or truncates each record to the header width so every
// downstream stage can index by column position safely.
func alignRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, rec := range rows {
		switch {
		case len(rec) == width:
			out = append(out, rec)
		case len(rec) > width:
			out = append(out, rec[:width])
		default:
			padded := make([]string, width)
			copy(padded, rec)
			out = append(out, padded)
		}
	}
	return out
}

func blankRow(rec []string) bool {
	return countNonBlank(rec) == 0
}

func countNonBlank(rec []string) int {
	n := 0
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

// mustUTF8 is a guard used after charset decoding.
func mustUTF8(b []byte) bool { return utf8.Valid(b) }
