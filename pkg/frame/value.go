// Package frame holds raw, possibly incomplete feature tables before they are
// turned into model input.
package frame

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a cell holds
type Kind uint8

const (
	// KindMissing is an empty or NA cell
	KindMissing Kind = iota
	// KindNumber is a parsed float
	KindNumber
	// KindCategory is a non-numeric label such as a quality grade
	KindCategory
	// KindAbsent is a cell whose row never supplied the column. It is
	// completed like an absent column rather than rejected like an NA cell.
	KindAbsent
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindCategory:
		return "category"
	case KindAbsent:
		return "absent"
	default:
		return "missing"
	}
}

// naTokens are read as missing, the same set tabular tools treat as NA by default
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {},
}

// Value is a single cell. Raw keeps the original text so batch output can be
// written back unchanged.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Raw  string
}

// Number returns a numeric value
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// Category returns a label value
func Category(s string) Value {
	return Value{Kind: KindCategory, Str: s, Raw: s}
}

// Missing returns an empty value
func Missing() Value {
	return Value{Kind: KindMissing}
}

// Absent returns the value of a column a row does not have
func Absent() Value {
	return Value{Kind: KindAbsent}
}

// Parse classifies raw cell text. Numbers win over labels, NA tokens are missing.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := naTokens[s]; ok {
		return Value{Kind: KindMissing, Raw: raw}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return Value{Kind: KindNumber, Num: f, Raw: raw}
	}
	return Value{Kind: KindCategory, Str: s, Raw: raw}
}

// IsNumber reports whether v holds a float
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// IsMissing reports whether v is empty
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// IsAbsent reports whether the row never had this column
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// Float returns the numeric value and whether there is one
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Key is the text an encoding table is searched with. Numbers use their
// shortest decimal form so 4 and 4.0 both look up "4".
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindCategory:
		return v.Str
	default:
		return ""
	}
}

// Text renders the cell for output, preferring the original text
func (v Value) Text() string {
	if v.Raw != "" {
		return v.Raw
	}
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindCategory:
		return v.Str
	default:
		return ""
	}
}
