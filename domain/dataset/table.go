package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"dashviz/domain/core"
)

// Column is a named, typed sequence of cells.
type Column struct {
	name   string
	typ    ColumnType
	values []Value
}

// NewColumn creates a column, copying values.
func NewColumn(name string, typ ColumnType, values []Value) *Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	return &Column{name: name, typ: typ, values: cp}
}

// NewTextColumn creates a text column; empty strings are missing.
func NewTextColumn(name string, values []string) *Column {
	vals := make([]Value, len(values))
	for i, s := range values {
		vals[i] = TextValue(s)
	}
	return &Column{name: name, typ: TypeText, values: vals}
}

// NewNumericColumn creates a numeric column; NaN is missing.
func NewNumericColumn(name string, values []float64) *Column {
	vals := make([]Value, len(values))
	for i, f := range values {
		vals[i] = NumberValue(f)
	}
	return &Column{name: name, typ: TypeNumeric, values: vals}
}

// NewTemporalColumn creates a temporal column; the zero time is missing.
func NewTemporalColumn(name string, values []time.Time) *Column {
	vals := make([]Value, len(values))
	for i, t := range values {
		vals[i] = TimeValue(t)
	}
	return &Column{name: name, typ: TypeTemporal, values: vals}
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Type() ColumnType { return c.typ }
func (c *Column) Len() int         { return len(c.values) }

// Value returns the cell at row i.
func (c *Column) Value(i int) Value {
	return c.values[i]
}

// Set replaces the cell at row i. Tables handed out by the pipeline are
// never shared, so this only affects the receiver.
func (c *Column) Set(i int, v Value) {
	c.values[i] = v
}

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool {
	return c.values[i].Missing
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.values {
		if v.Missing {
			n++
		}
	}
	return n
}

// String renders row i for display, membership tests and export.
// Missing cells render as the empty string.
func (c *Column) String(i int) string {
	v := c.values[i]
	if v.Missing {
		return ""
	}
	switch c.typ {
	case TypeNumeric:
		return FormatNumber(v.Number)
	case TypeTemporal:
		return FormatTime(v.Time)
	default:
		return v.Text
	}
}

// Number returns the numeric interpretation of row i. Temporal cells map to
// Unix seconds; text and missing cells have none.
func (c *Column) Number(i int) (float64, bool) {
	v := c.values[i]
	if v.Missing {
		return 0, false
	}
	switch c.typ {
	case TypeNumeric:
		return v.Number, true
	case TypeTemporal:
		return float64(v.Time.UnixNano()) / 1e9, true
	}
	return 0, false
}

// Key returns a grouping key for row i. ok is false for missing cells.
func (c *Column) Key(i int) (key string, ok bool) {
	v := c.values[i]
	if v.Missing {
		return "", false
	}
	switch c.typ {
	case TypeNumeric:
		return strconv.FormatFloat(v.Number+0, 'g', -1, 64), true
	case TypeTemporal:
		return strconv.FormatInt(v.Time.UnixNano(), 10), true
	}
	return v.Text, true
}

// Compare orders rows i and j ascending with missing cells last.
func (c *Column) Compare(i, j int) int {
	a, b := c.values[i], c.values[j]
	switch {
	case a.Missing && b.Missing:
		return 0
	case a.Missing:
		return 1
	case b.Missing:
		return -1
	}
	switch c.typ {
	case TypeNumeric:
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	case TypeTemporal:
		return a.Time.Compare(b.Time)
	}
	return strings.Compare(a.Text, b.Text)
}

// Numbers returns the non-missing numeric values in row order.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.values))
	for i := range c.values {
		if f, ok := c.Number(i); ok && !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

func (c *Column) clone() *Column {
	return NewColumn(c.name, c.typ, c.values)
}

func (c *Column) take(rows []int) *Column {
	vals := make([]Value, len(rows))
	for k, r := range rows {
		vals[k] = c.values[r]
	}
	return &Column{name: c.name, typ: c.typ, values: vals}
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. Column names must be unique and all
// columns must have the same length.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("%w: column %d is nil", core.ErrInvalidTable, i)
		}
		if _, dup := t.index[col.name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidTable, col.name)
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d",
				core.ErrInvalidTable, col.name, col.Len(), t.rows)
		}
		t.index[col.name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNewTable is NewTable for fixtures; it panics on invalid input.
func MustNewTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the row count.
func (t *Table) Len() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool {
	return t == nil || t.rows == 0 || len(t.columns) == 0
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnsOfType returns the names of columns with the given type.
func (t *Table) ColumnsOfType(typ ColumnType) []string {
	var names []string
	for _, c := range t.columns {
		if c.typ == typ {
			names = append(names, c.name)
		}
	}
	return names
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.clone()
	}
	return MustNewTable(cols...)
}

// Take returns a new table holding the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	out := MustNewTable(cols...)
	out.rows = len(rows)
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.rows {
		n = t.rows
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Equal reports whether two tables hold the same columns, types and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.name != oc.name || c.typ != oc.typ {
			return false
		}
		for r := range c.values {
			if !c.values[r].equal(oc.values[r], c.typ) {
				return false
			}
		}
	}
	return true
}

// Records returns up to limit rows as name → cell maps for JSON encoding.
// A negative limit returns every row.
func (t *Table) Records(limit int) []map[string]Cell {
	n := t.rows
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]map[string]Cell, n)
	for r := 0; r < n; r++ {
		rec := make(map[string]Cell, len(t.columns))
		for _, c := range t.columns {
			rec[c.name] = Cell{Value: c.values[r], Type: c.typ}
		}
		out[r] = rec
	}
	return out
}
