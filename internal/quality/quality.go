// Package quality scores a cleaned dataset: completeness of the
// row×column grid, duplicate-row rate, and a single 0–100 score with
// itemized issues.
//
// All heuristic breakpoints are named constants so they can be tuned (or
// exposed as configuration) without touching the scoring code.
package quality

import (
	"fmt"

	"ingest/internal/dataset"
)

const (
	// EmptyWarnRate and EmptyHighRate are the empty-cell fractions at
	// which a completeness issue is raised and escalated.
	EmptyWarnRate = 0.10
	EmptyHighRate = 0.30

	// DuplicateHighRate is the duplicate-row fraction past which the
	// duplicate issue escalates. Any duplicate at all raises an issue.
	DuplicateHighRate = 0.10

	// MissingPenaltyCap and DuplicatePenaltyCap bound how much each rate
	// can subtract from the 100-point score.
	MissingPenaltyCap   = 30.0
	DuplicatePenaltyCap = 20.0
)

// Severity of one detected issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityHigh    Severity = "high"
)

// Issue is one itemized data-quality finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Completeness describes how filled the grid is.
type Completeness struct {
	TotalCells  int     `json:"total_cells"`
	FilledCells int     `json:"filled_cells"`
	EmptyCells  int     `json:"empty_cells"`
	Percent     float64 `json:"percent"`
}

// Uniqueness describes row duplication.
type Uniqueness struct {
	TotalRows     int     `json:"total_rows"`
	UniqueRows    int     `json:"unique_rows"`
	DuplicateRows int     `json:"duplicate_rows"`
	DuplicateRate float64 `json:"duplicate_rate"`
}

// Consistency carries the single 0–100 quality score.
type Consistency struct {
	Score int `json:"score"`
}

// Report is the full quality bundle for one dataset view.
type Report struct {
	Completeness Completeness `json:"completeness"`
	Uniqueness   Uniqueness   `json:"uniqueness"`
	Consistency  Consistency  `json:"consistency"`
	Issues       []Issue      `json:"issues,omitempty"`
}

// Analyze derives the quality report from the declared columns and
// cleaned rows. The hidden origin-sheet tag is not part of the grid.
func Analyze(cols []dataset.Column, rows []dataset.Row) Report {
	var rep Report

	total := len(rows) * len(cols)
	filled := 0
	for _, r := range rows {
		for _, c := range cols {
			if !dataset.CellMissing(r[c.Name]) {
				filled++
			}
		}
	}
	empty := total - filled

	var emptyRate float64
	if total > 0 {
		emptyRate = float64(empty) / float64(total)
	}
	rep.Completeness = Completeness{
		TotalCells:  total,
		FilledCells: filled,
		EmptyCells:  empty,
		Percent:     100 * (1 - emptyRate),
	}
	if total > 0 && emptyRate > EmptyWarnRate {
		sev := SeverityWarning
		if emptyRate > EmptyHighRate {
			sev = SeverityHigh
		}
		rep.Issues = append(rep.Issues, Issue{
			Severity: sev,
			Message:  fmt.Sprintf("%.1f%% of cells are empty", 100*emptyRate),
		})
	}

	dups := dataset.CountDuplicates(cols, rows)
	var dupRate float64
	if len(rows) > 0 {
		dupRate = float64(dups) / float64(len(rows))
	}
	rep.Uniqueness = Uniqueness{
		TotalRows:     len(rows),
		UniqueRows:    len(rows) - dups,
		DuplicateRows: dups,
		DuplicateRate: dupRate,
	}
	if dups > 0 {
		sev := SeverityWarning
		if dupRate > DuplicateHighRate {
			sev = SeverityHigh
		}
		rep.Issues = append(rep.Issues, Issue{
			Severity: sev,
			Message:  fmt.Sprintf("%d duplicate rows (%.1f%%)", dups, 100*dupRate),
		})
	}

	rep.Consistency = Consistency{Score: score(emptyRate, dupRate)}
	return rep
}

// score starts at 100 and subtracts capped penalties for the missing-cell
// rate and the duplicate-row rate, floored at 0.
func score(emptyRate, dupRate float64) int {
	s := 100.0
	missingPenalty := 100 * emptyRate
	if missingPenalty > MissingPenaltyCap {
		missingPenalty = MissingPenaltyCap
	}
	dupPenalty := 100 * dupRate
	if dupPenalty > DuplicatePenaltyCap {
		dupPenalty = DuplicatePenaltyCap
	}
	s -= missingPenalty + dupPenalty
	if s < 0 {
		s = 0
	}
	return int(s + 0.5)
}
