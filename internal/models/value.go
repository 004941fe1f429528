package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the variant held by a [Value].
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Value is a single spreadsheet cell: empty, string, number or boolean.
//
// The text the sheet displayed is kept alongside parsed numbers so that
// String returns exactly what a reader of the sheet would see.
type Value struct {
	kind  Kind
	text  string
	num   float64
	b     bool
	typed bool // built from a typed JSON value rather than displayed text
}

// EmptyValue returns the empty cell.
func EmptyValue() Value { return Value{} }

// StringValue wraps s as a string cell.
func StringValue(s string) Value { return Value{kind: KindString, text: s} }

// NumberValue wraps f as a numeric cell.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f, text: strconv.FormatFloat(f, 'f', -1, 64), typed: true}
}

// BoolValue wraps b as a boolean cell.
func BoolValue(b bool) Value {
	v := Value{kind: KindBool, b: b, text: "FALSE", typed: true}
	if b {
		v.text = "TRUE"
	}
	return v
}

// ParseValue classifies a raw cell returned by the Sheets API.
//
// Blank cells become empty, numeric text becomes a number, TRUE/FALSE become
// booleans and anything else stays a string.
func ParseValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return EmptyValue()
	case bool:
		return BoolValue(v)
	case float64:
		return NumberValue(v)
	case int:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case string:
		return parseText(v)
	default:
		return StringValue(fmt.Sprint(v))
	}
}

func parseText(s string) Value {
	if s == "" {
		return EmptyValue()
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return Value{kind: KindBool, b: true, text: s}
	case "FALSE":
		return Value{kind: KindBool, b: false, text: s}
	}
	if numberPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Value{kind: KindNumber, num: f, text: s}
		}
	}
	return StringValue(s)
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell was blank.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// String returns the cell as displayed in the sheet.
func (v Value) String() string { return v.text }

// Number returns the numeric value and whether v is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean value and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Native returns the value handed to templates.
//
// Cells parsed from displayed text are handed over as that text, so "007",
// "TRUE" and "3.0" render exactly as the sheet shows them. Typed values keep
// their Go type: whole numbers become int64, fractional numbers their text.
func (v Value) Native() any {
	if v.kind != KindEmpty && !v.typed {
		return v.text
	}
	switch v.kind {
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}
		return v.text
	case KindBool:
		return v.b
	default:
		return ""
	}
}
