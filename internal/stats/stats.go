// Package stats computes per-column descriptive statistics over cleaned
// values, keyed by the column's inferred type.
//
// Every computation tolerates degenerate input: with zero values the
// second return is false ("statistics unavailable"); with one value the
// spread measures collapse to zero instead of erroring.
package stats

import (
	"math"
	"sort"
	"time"

	"ingest/internal/infer"
)

const (
	// IQRFence is the Tukey fence multiplier for outlier counting.
	IQRFence = 1.5

	// TopValueCap bounds the most-frequent-values list for text columns.
	TopValueCap = 10

	// FormatSampleCap bounds how many raw strings are inspected when
	// detecting literal date formats.
	FormatSampleCap = 10

	// patternThreshold is the fraction of values that must match a shape
	// before the pattern is reported for a text column.
	patternThreshold = 0.5
)

// Numeric summarizes a numeric column.
type Numeric struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	Outliers int     `json:"outliers"`
}

// NumericStats computes the numeric summary. ok is false when values is
// empty.
func NumericStats(values []float64) (Numeric, bool) {
	n := len(values)
	if n == 0 {
		return Numeric{}, false
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	// Population standard deviation.
	std := math.Sqrt(sq / float64(n))

	q1 := quantile(sorted, 0.25)
	med := quantile(sorted, 0.5)
	q3 := quantile(sorted, 0.75)

	iqr := q3 - q1
	lo := q1 - IQRFence*iqr
	hi := q3 + IQRFence*iqr
	outliers := 0
	for _, v := range sorted {
		if v < lo || v > hi {
			outliers++
		}
	}

	return Numeric{
		Count:    n,
		Min:      sorted[0],
		Max:      sorted[n-1],
		Mean:     mean,
		Median:   med,
		StdDev:   std,
		Q1:       q1,
		Q3:       q3,
		Outliers: outliers,
	}, true
}

// quantile interpolates the p-quantile of a sorted slice by sorted-index
// interpolation: index p*(n-1), linear between neighbors.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ValueCount is one entry of a text column's frequency table.
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Text summarizes a string column.
type Text struct {
	Count     int          `json:"count"`
	MinLen    int          `json:"min_len"`
	MaxLen    int          `json:"max_len"`
	AvgLen    float64      `json:"avg_len"`
	TopValues []ValueCount `json:"top_values"`
	Patterns  []string     `json:"patterns,omitempty"`
}

// Recognized text shape pattern labels.
const (
	PatternDigits   = "digits"
	PatternCode     = "uppercase_code"
	PatternEmail    = "email"
	PatternDateLike = "date_like"
)

// TextStats computes the text summary over non-empty values. ok is false
// when values is empty.
func TextStats(values []string) (Text, bool) {
	n := len(values)
	if n == 0 {
		return Text{}, false
	}

	minLen := len([]rune(values[0]))
	maxLen := minLen
	totalLen := 0
	freq := make(map[string]int, n)
	var digits, codes, emails, dateLike int

	for _, v := range values {
		l := len([]rune(v))
		totalLen += l
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
		freq[v]++

		switch {
		case isDigits(v):
			digits++
		case isUpperCode(v):
			codes++
		}
		if isEmail(v) {
			emails++
		}
		if infer.DateShaped(v) {
			dateLike++
		}
	}

	top := topValues(freq, n)

	var patterns []string
	threshold := int(patternThreshold*float64(n)) + 1
	if digits >= threshold {
		patterns = append(patterns, PatternDigits)
	}
	if codes >= threshold {
		patterns = append(patterns, PatternCode)
	}
	if emails >= threshold {
		patterns = append(patterns, PatternEmail)
	}
	if dateLike >= threshold {
		patterns = append(patterns, PatternDateLike)
	}

	return Text{
		Count:     n,
		MinLen:    minLen,
		MaxLen:    maxLen,
		AvgLen:    float64(totalLen) / float64(n),
		TopValues: top,
		Patterns:  patterns,
	}, true
}

func topValues(freq map[string]int, total int) []ValueCount {
	out := make([]ValueCount, 0, len(freq))
	for v, c := range freq {
		out = append(out, ValueCount{
			Value:   v,
			Count:   c,
			Percent: 100 * float64(c) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > TopValueCap {
		out = out[:TopValueCap]
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isUpperCode matches short uppercase-alphanumeric codes like "SKU-12"
// or "AB12". At least one letter, no lowercase, only [A-Z0-9_-].
func isUpperCode(s string) bool {
	if len(s) < 2 || len(s) > 32 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

func isEmail(s string) bool {
	at := -1
	for i, r := range s {
		if r == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
		if r == ' ' {
			return false
		}
	}
	if at <= 0 || at == len(s)-1 {
		return false
	}
	dot := false
	for _, r := range s[at+1:] {
		if r == '.' {
			dot = true
		}
	}
	return dot
}

// Date summarizes a date column.
type Date struct {
	Count       int       `json:"count"`
	Min         time.Time `json:"min"`
	Max         time.Time `json:"max"`
	RangeDays   int       `json:"range_days"`
	Granularity string    `json:"granularity"`
	Formats     []string  `json:"formats,omitempty"`
}

// Granularity labels, chosen from the range magnitude.
const (
	GranularityHour  = "hour"
	GranularityDay   = "day"
	GranularityMonth = "month"
	GranularityYear  = "year"
)

// DateStats computes the date summary. raws are the original strings the
// dates were cleaned from; the first FormatSampleCap of them feed literal
// format detection. ok is false when values is empty.
func DateStats(values []time.Time, raws []string) (Date, bool) {
	n := len(values)
	if n == 0 {
		return Date{}, false
	}

	min, max := values[0], values[0]
	for _, t := range values[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}

	rangeDays := int(max.Sub(min).Hours() / 24)

	var gran string
	switch {
	case rangeDays < 2:
		gran = GranularityHour
	case rangeDays <= 62:
		gran = GranularityDay
	case rangeDays <= 730:
		gran = GranularityMonth
	default:
		gran = GranularityYear
	}

	return Date{
		Count:       n,
		Min:         min,
		Max:         max,
		RangeDays:   rangeDays,
		Granularity: gran,
		Formats:     detectFormats(raws),
	}, true
}

// formatLayouts are candidate literal layouts probed against raw strings,
// most specific first.
var formatLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
}

// detectFormats returns the distinct literal layouts observed in the
// first FormatSampleCap raw strings, in first-seen order.
func detectFormats(raws []string) []string {
	if len(raws) > FormatSampleCap {
		raws = raws[:FormatSampleCap]
	}
	var out []string
	seen := make(map[string]struct{})

	record := func(lay string) {
		if _, ok := seen[lay]; !ok {
			seen[lay] = struct{}{}
			out = append(out, lay)
		}
	}

	for _, raw := range raws {
		matched := false
		// Prefer a layout of identical length; Go's parser accepts
		// unpadded values against padded layouts, which would otherwise
		// mislabel "2024-1-5" as "2006-01-02".
		for _, lay := range formatLayouts {
			if len(lay) != len(raw) {
				continue
			}
			if _, err := time.Parse(lay, raw); err == nil {
				record(lay)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, lay := range formatLayouts {
			if _, err := time.Parse(lay, raw); err == nil {
				record(lay)
				break
			}
		}
	}
	return out
}
