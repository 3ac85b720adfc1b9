package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// parseWorkbook extracts one RawSheet per workbook sheet.
//
// Per-sheet failures are recoverable: the offending sheet is skipped with
// a warning and its siblings continue. The whole operation fails only
// when not a single sheet yields a usable grid.
func parseWorkbook(data []byte, logger *zap.Logger) ([]RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrEmptyFile
	}

	var (
		out     []RawSheet
		lastErr error
	)
	for _, name := range names {
		grid, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err == nil {
			var sheet RawSheet
			sheet, err = gridToSheet(name, grid)
			if err == nil {
				out = append(out, sheet)
				continue
			}
		}
		lastErr = err
		logger.Warn("skipping unparsable sheet",
			zap.String("sheet", name),
			zap.Error(err),
		)
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no sheet parsed: %w", lastErr)
		}
		return nil, ErrEmptyFile
	}
	return out, nil
}

// parseXLS handles the ".xls" extension. Files saved by modern tools are
// frequently ZIP-based workbooks or HTML tables wearing a legacy
// extension; true BIFF binaries are not supported.
func parseXLS(data []byte, logger *zap.Logger) ([]RawSheet, error) {
	// ZIP-based workbook in disguise.
	if bytes.HasPrefix(data, []byte("PK")) {
		return parseWorkbook(data, logger)
	}

	// HTML table export.
	if looksLikeHTML(data) {
		return parseHTMLTables(data, logger)
	}

	return nil, fmt.Errorf("%w: legacy binary .xls", ErrUnsupportedFormat)
}
