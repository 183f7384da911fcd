// Package table holds the in-memory tabular model shared by the workbook
// writer, the object mapper and the workbook reader.
package table

import (
	"errors"
	"fmt"
)

// Type identifies the declared value type of a column.
type Type string

// Column value types.
const (
	TypeString   Type = "string"
	TypeInt32    Type = "int32"
	TypeInt64    Type = "int64"
	TypeDecimal  Type = "decimal"
	TypeFloat64  Type = "float64"
	TypeBool     Type = "bool"
	TypeDateTime Type = "datetime"
	TypeObject   Type = "object"
)

// TypeClass is the write-time classification of a column.
type TypeClass int

const (
	ClassText TypeClass = iota
	ClassNumeric
)

// Class reports how cells of this type are written. Only decimal and int32
// columns are numeric; every other type, floating point and 64-bit integers
// included, is written as text.
func (t Type) Class() TypeClass {
	if t == TypeDecimal || t == TypeInt32 {
		return ClassNumeric
	}
	return ClassText
}

type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Row holds cell values positionally aligned with the table columns.
// A nil entry is a missing value.
type Row []any

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v any) bool {
	return v == nil
}

type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// ErrRowWidth is returned when a row does not match the column count.
var ErrRowWidth = errors.New("row width does not match column count")

func New(name string, columns ...Column) *Table {
	return &Table{
		Name:    name,
		Columns: columns,
	}
}

func (t *Table) AddColumn(name string, typ Type) {
	t.Columns = append(t.Columns, Column{Name: name, Type: typ})
}

// AddRow appends a row. The row must have exactly one value per column.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("table %q: %w (%d values, %d columns)", t.Name, ErrRowWidth, len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, Row(values))
	return nil
}

// ColumnIndex returns the index of the first column with the given name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) Validate() error {
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("table %q row %d: %w", t.Name, i, ErrRowWidth)
		}
	}
	return nil
}

// DataSet is an ordered collection of tables. Table names need not be unique.
type DataSet struct {
	Name   string
	Tables []*Table
}

func NewDataSet(name string, tables ...*Table) *DataSet {
	return &DataSet{Name: name, Tables: tables}
}

func (ds *DataSet) Add(t *Table) {
	ds.Tables = append(ds.Tables, t)
}

// Table returns the first table with the given name.
func (ds *DataSet) Table(name string) (*Table, bool) {
	for _, t := range ds.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func (ds *DataSet) Validate() error {
	for _, t := range ds.Tables {
		if t == nil {
			return errors.New("nil table in data set")
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
