package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// looksLikeHTML sniffs for an HTML document or table fragment.
func looksLikeHTML(data []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(data))
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	if len(head) > 2048 {
		head = head[:2048]
	}
	return bytes.Contains(head, []byte("<table")) ||
		bytes.Contains(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<!doctype html"))
}

// parseHTMLTables extracts each <table> element as one sheet. Header cells
// come from the first row (<th> preferred). A table that yields no grid is
// skipped with a warning, mirroring workbook sheet handling.
func parseHTMLTables(data []byte, logger *zap.Logger) ([]RawSheet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		out     []RawSheet
		lastErr error
	)
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		name := strings.TrimSpace(table.AttrOr("id", ""))
		if name == "" {
			name = fmt.Sprintf("Table%d", i+1)
		}

		var grid [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var row []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})
			if len(row) > 0 {
				grid = append(grid, row)
			}
		})

		sheet, err := gridToSheet(name, grid)
		if err != nil {
			lastErr = err
			logger.Warn("skipping unparsable html table",
				zap.String("table", name),
				zap.Error(err),
			)
			return
		}
		out = append(out, sheet)
	})

	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no table parsed: %w", lastErr)
		}
		return nil, ErrEmptyFile
	}
	return out, nil
}
