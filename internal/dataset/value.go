package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind discriminates the cell value union.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
	KindBool
)

// Value is one typed cell. It is a closed tagged union over
// {string, number, date, boolean, null}; there is no "any" escape hatch,
// which preserves the null-vs-empty-string distinction the cleaner needs.
//
// The zero Value is the null marker.
type Value struct {
	kind Kind
	str  string
	num  float64
	t    time.Time
	b    bool
}

// Null returns the null marker.
func Null() Value { return Value{} }

// String wraps a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric cell. Non-finite input collapses to null so a
// Number value is always a finite float64.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Date wraps a date cell.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Bool wraps a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload; ok is false for other kinds.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload; ok is false for other kinds.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Time returns the date payload; ok is false for other kinds.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDate }

// Boolean returns the boolean payload; ok is false for other kinds.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Display renders the value for previews, fingerprints, and reports.
// Null renders as the empty string.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.t.Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON renders the natural JSON shape: null, string, number, or
// boolean. Dates serialize as RFC3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindDate:
		return json.Marshal(v.t.Format(time.RFC3339))
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reverses MarshalJSON. Strings that parse as RFC3339 come
// back as dates; this is the one lossy corner of the natural JSON shape and
// is acceptable for the opaque blob store, which round-trips cleaned data.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(t)
	case float64:
		*v = Number(t)
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			*v = Date(ts)
		} else {
			*v = String(t)
		}
	default:
		return fmt.Errorf("dataset: cannot decode %T into Value", raw)
	}
	return nil
}
