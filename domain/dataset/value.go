package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ColumnType is the semantic type of a column, decided once at load time.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumeric
	TypeTemporal
)

// String returns the type label used in reports and APIs.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumeric:
		return "numeric"
	case TypeTemporal:
		return "temporal"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseColumnType parses a type label.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "text":
		return TypeText, nil
	case "numeric":
		return TypeNumeric, nil
	case "temporal":
		return TypeTemporal, nil
	}
	return TypeText, fmt.Errorf("unknown column type %q", s)
}

// Value is a single cell. Which field is meaningful depends on the owning
// column's type; Missing overrides all of them.
type Value struct {
	Text    string
	Number  float64
	Time    time.Time
	Missing bool
}

// TextValue creates a text cell. Empty strings are missing.
func TextValue(s string) Value {
	if s == "" {
		return MissingValue()
	}
	return Value{Text: s}
}

// NumberValue creates a numeric cell. NaN is missing.
func NumberValue(f float64) Value {
	if math.IsNaN(f) {
		return MissingValue()
	}
	return Value{Number: f}
}

// TimeValue creates a temporal cell. The zero time is missing.
func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return MissingValue()
	}
	return Value{Time: t}
}

// MissingValue creates a missing cell.
func MissingValue() Value {
	return Value{Missing: true}
}

func (v Value) equal(o Value, typ ColumnType) bool {
	if v.Missing || o.Missing {
		return v.Missing == o.Missing
	}
	switch typ {
	case TypeNumeric:
		return v.Number == o.Number
	case TypeTemporal:
		return v.Time.Equal(o.Time)
	default:
		return v.Text == o.Text
	}
}

// FormatNumber renders a float without loss and without exponent notation.
func FormatNumber(f float64) string {
	if f == 0 {
		f = 0 // fold negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatTime renders dates without a time part when the time is midnight.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999999")
	}
	return t.Format("2006-01-02 15:04:05")
}

// native returns the Go value for JSON encoding: string, float64, time.Time or nil.
func (v Value) native(typ ColumnType) interface{} {
	if v.Missing {
		return nil
	}
	switch typ {
	case TypeNumeric:
		if math.IsInf(v.Number, 0) {
			// JSON has no infinity
			return FormatNumber(v.Number)
		}
		return v.Number
	case TypeTemporal:
		return FormatTime(v.Time)
	default:
		return v.Text
	}
}

// Cell pairs a value with its column type so it can be marshalled on its own.
type Cell struct {
	Value Value
	Type  ColumnType
}

// MarshalJSON encodes the native form of the cell.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value.native(c.Type))
}
