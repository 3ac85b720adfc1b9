// Package semantic assigns heuristic business-role labels to columns
// (identifier, dimension, measure, date) and proposes business-domain
// labels for the dataset as a whole.
//
// Everything here is keyword- and shape-driven; confidences are coarse
// and meant to rank suggestions, not to be probabilities.
package semantic

import (
	"sort"
	"strings"

	"ingest/internal/dataset"
)

// Category is the business role of a column.
type Category string

const (
	CategoryIdentifier Category = "identifier"
	CategoryDimension  Category = "dimension"
	CategoryMeasure    Category = "measure"
	CategoryDate       Category = "date"
	CategoryUnknown    Category = "unknown"
)

const (
	// IdentifierUniqueRatio strengthens an identifier classification for
	// string columns whose values are almost all distinct.
	IdentifierUniqueRatio = 0.95

	// DimensionUniqueRatio strengthens a dimension classification for
	// string columns with very few distinct values.
	DimensionUniqueRatio = 0.10
)

// Annotation is one column's semantic tag.
type Annotation struct {
	Column     string   `json:"column"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// categoryKeywords maps name fragments to the category they suggest.
// Checked in order; first family with a hit wins.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryIdentifier, []string{"id", "key", "code", "uuid"}},
	{CategoryDate, []string{"date", "time", "day", "month", "year"}},
	{CategoryMeasure, []string{"amount", "price", "cost", "value", "total", "revenue", "salary"}},
	{CategoryMeasure, []string{"count", "number", "num", "qty", "quantity"}},
	{CategoryDimension, []string{"name", "type", "category", "status", "region", "group", "label"}},
}

// domainKeywords maps a business domain to the column-name fragments that
// indicate it.
var domainKeywords = map[string][]string{
	"sales":      {"sale", "order", "customer", "product", "revenue", "deal"},
	"finance":    {"amount", "price", "cost", "budget", "invoice", "profit", "expense", "balance"},
	"marketing":  {"campaign", "channel", "click", "impression", "conversion", "lead"},
	"hr":         {"employee", "salary", "department", "hire", "staff", "manager"},
	"operations": {"shipment", "delivery", "supplier", "warehouse", "route", "logistics"},
	"inventory":  {"stock", "sku", "inventory", "quantity", "item"},
}

// DomainUnknown is returned when no domain keyword matches any column.
const DomainUnknown = "unknown"

// AnnotateColumn classifies one column. rows supply the uniqueness ratio
// used to reinforce string-column classifications.
func AnnotateColumn(col dataset.Column, rows []dataset.Row) Annotation {
	name := strings.ToLower(col.Name)

	// The declared type dominates for dates: a date column is a date
	// role no matter what it is called.
	if col.Type == dataset.TypeDate {
		return Annotation{Column: col.Name, Category: CategoryDate, Confidence: 0.95}
	}

	byName, nameConf := matchKeywords(name)

	if col.Type == dataset.TypeString {
		ratio, counted := uniqueRatio(col.Name, rows)
		if counted {
			switch {
			case ratio > IdentifierUniqueRatio:
				conf := 0.6
				if byName == CategoryIdentifier {
					conf = 0.95
				}
				return Annotation{Column: col.Name, Category: CategoryIdentifier, Confidence: conf}
			case ratio < DimensionUniqueRatio:
				conf := 0.6
				if byName == CategoryDimension {
					conf = 0.9
				}
				return Annotation{Column: col.Name, Category: CategoryDimension, Confidence: conf}
			}
		}
	}

	if byName != CategoryUnknown {
		return Annotation{Column: col.Name, Category: byName, Confidence: nameConf}
	}

	// Fallbacks by declared type.
	switch col.Type {
	case dataset.TypeNumber:
		return Annotation{Column: col.Name, Category: CategoryMeasure, Confidence: 0.4}
	case dataset.TypeBoolean:
		return Annotation{Column: col.Name, Category: CategoryDimension, Confidence: 0.4}
	default:
		return Annotation{Column: col.Name, Category: CategoryDimension, Confidence: 0.3}
	}
}

// Annotate classifies every column.
func Annotate(cols []dataset.Column, rows []dataset.Row) []Annotation {
	out := make([]Annotation, 0, len(cols))
	for _, c := range cols {
		out = append(out, AnnotateColumn(c, rows))
	}
	return out
}

// Domains scans all column names and returns every business domain whose
// keyword set matches at least one of them, sorted for determinism, or
// [DomainUnknown] when none match.
func Domains(cols []dataset.Column) []string {
	hits := make(map[string]struct{})
	for _, c := range cols {
		name := strings.ToLower(c.Name)
		for domain, words := range domainKeywords {
			for _, w := range words {
				if strings.Contains(name, w) {
					hits[domain] = struct{}{}
					break
				}
			}
		}
	}
	if len(hits) == 0 {
		return []string{DomainUnknown}
	}
	out := make([]string, 0, len(hits))
	for d := range hits {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func matchKeywords(name string) (Category, float64) {
	for _, family := range categoryKeywords {
		for _, w := range family.words {
			if name == w || strings.Contains(name, w) {
				conf := 0.8
				if name == w {
					conf = 0.9
				}
				return family.category, conf
			}
		}
	}
	return CategoryUnknown, 0
}

// uniqueRatio computes distinct non-missing values over non-missing
// values for one column. counted is false when the column has no values.
func uniqueRatio(name string, rows []dataset.Row) (float64, bool) {
	distinct := make(map[string]struct{})
	total := 0
	for _, r := range rows {
		v := r[name]
		if dataset.CellMissing(v) {
			continue
		}
		total++
		distinct[v.Display()] = struct{}{}
	}
	if total == 0 {
		return 0, false
	}
	return float64(len(distinct)) / float64(total), true
}
