// Package workbook holds the in-memory tabular model produced by the loader.
// Workbooks and tables are built once and read-only afterwards.
package workbook

import (
	"strconv"
	"time"
)

// ValueType defines the storage type of a single cell
type ValueType string

const (
	ValueTypeMissing ValueType = "missing"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeString  ValueType = "string"
	ValueTypeDate    ValueType = "date"
	ValueTypeBool    ValueType = "bool"
)

// Value is one typed cell
type Value struct {
	Type ValueType `json:"type"`
	Num  float64   `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
	Time time.Time `json:"time,omitempty"`
	Bool bool      `json:"bool,omitempty"`
}

// NewNumericValue creates a numeric cell
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, Num: n}
}

// NewStringValue creates a text cell; an empty string is missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, Str: s}
}

// NewDateValue creates a date cell
func NewDateValue(t time.Time) Value {
	return Value{Type: ValueTypeDate, Time: t}
}

// NewBoolValue creates a boolean cell
func NewBoolValue(b bool) Value {
	return Value{Type: ValueTypeBool, Bool: b}
}

// NewMissingValue creates a missing cell
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// String renders the cell the way reports print it
func (v Value) String() string {
	switch v.Type {
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeString:
		return v.Str
	case ValueTypeDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	case ValueTypeBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return "<missing>"
}

// Key identifies a distinct value; numbers and strings that print alike stay distinct
func (v Value) Key() string {
	return string(v.Type) + ":" + v.String()
}

// ColumnKind classifies a whole column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindDate    ColumnKind = "date"
	KindText    ColumnKind = "text"
	KindBool    ColumnKind = "bool"
)

// Column is a named sequence of cells aligned by row position
type Column struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Values []Value    `json:"values"`
}

// NewColumn builds a column and infers its kind.
// A column is numeric when no non-missing cell is anything but a number, so an
// all-missing column is numeric. It is a date or bool column when it has at
// least one value and every value is of that type. Anything else is text.
// Bool columns are neither numeric nor text.
func NewColumn(name string, values []Value) *Column {
	var numeric, dates, bools, other int
	for _, v := range values {
		switch v.Type {
		case ValueTypeNumeric:
			numeric++
		case ValueTypeDate:
			dates++
		case ValueTypeBool:
			bools++
		case ValueTypeString:
			other++
		}
	}

	kind := KindText
	switch {
	case other > 0:
	case dates == 0 && bools == 0:
		kind = KindNumeric
	case numeric == 0 && bools == 0:
		kind = KindDate
	case numeric == 0 && dates == 0:
		kind = KindBool
	}

	return &Column{Name: name, Kind: kind, Values: values}
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Values)
}

// NonMissing counts present values
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats returns the numeric values in row order, skipping anything else
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if v.Type == ValueTypeNumeric {
			out = append(out, v.Num)
		}
	}
	return out
}

// FloatAt returns the numeric value at row i
func (c *Column) FloatAt(i int) (float64, bool) {
	if i < 0 || i >= len(c.Values) || c.Values[i].Type != ValueTypeNumeric {
		return 0, false
	}
	return c.Values[i].Num, true
}

// Distinct returns the distinct non-missing values in first-appearance order
func (c *Column) Distinct() []Value {
	seen := make(map[string]bool)
	var out []Value
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		k := v.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// Table is one loaded sheet
type Table struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
	Rows    int       `json:"rows"`
}

// NewTable builds a table; every column must already be padded to rows
func NewTable(name string, rows int, columns []*Column) *Table {
	return &Table{Name: name, Rows: rows, Columns: columns}
}

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) {
	return t.Rows, len(t.Columns)
}

// ColumnsOfKind returns the columns of a given kind in table order
func (t *Table) ColumnsOfKind(kind ColumnKind) []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumns returns numeric columns in table order
func (t *Table) NumericColumns() []*Column {
	return t.ColumnsOfKind(KindNumeric)
}

// TextColumns returns text columns in table order
func (t *Table) TextColumns() []*Column {
	return t.ColumnsOfKind(KindText)
}

// ColumnNames lists names of the given columns
func ColumnNames(cols []*Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

// SheetError records a sheet the loader had to skip
type SheetError struct {
	Sheet string `json:"sheet"`
	Err   string `json:"error"`
}

// Workbook is the loaded spreadsheet: ordered sheet names and the tables that loaded
type Workbook struct {
	Path       string       `json:"path"`
	SheetNames []string     `json:"sheet_names"`
	Tables     []*Table     `json:"tables"`
	Skipped    []SheetError `json:"skipped,omitempty"`
}
