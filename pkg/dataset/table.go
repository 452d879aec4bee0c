/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: In-memory typed table used as input to the schema and data encoders. Columns
are either continuous or categorical; every cell may be missing.
*/

package dataset

import (
	"fmt"
	"math"
)

// Kind is the type of a table column
type Kind int

const (
	Continuous Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single cell. Valid is false for a missing cell.
type Value struct {
	Num   float64 // Continuous value
	Str   string  // Categorical label
	Valid bool    // False when the cell is missing
}

// Num returns a present continuous cell; NaN is treated as missing
func Num(v float64) Value {
	if math.IsNaN(v) {
		return Value{}
	}
	return Value{Num: v, Valid: true}
}

// Str returns a present categorical cell
func Str(s string) Value { return Value{Str: s, Valid: true} }

// Missing returns a missing cell
func Missing() Value { return Value{} }

// Column is a named, typed column of cells
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NumericColumn builds a continuous column; NaN entries are missing
func NumericColumn(name string, values []float64) Column {
	col := Column{Name: name, Kind: Continuous, Values: make([]Value, len(values))}
	for i, v := range values {
		col.Values[i] = Num(v)
	}
	return col
}

// CategoricalColumn builds a categorical column; empty strings are missing
func CategoricalColumn(name string, labels []string) Column {
	col := Column{Name: name, Kind: Categorical, Values: make([]Value, len(labels))}
	for i, s := range labels {
		if s == "" {
			col.Values[i] = Missing()
			continue
		}
		col.Values[i] = Str(s)
	}
	return col
}

// Table is an ordered set of equally long columns
type Table struct {
	Columns []Column
}

// NewTable builds a table from columns
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// Rows returns the number of rows, taken from the first column
func (t *Table) Rows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Validate checks that the table has columns of equal length with unique, non-empty names
func (t *Table) Validate() error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}
	rows := len(t.Columns[0].Values)
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table has a column with an empty name")
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Values) != rows {
			return fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}

// Drop returns a new table without the named columns
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := &Table{}
	for _, c := range t.Columns {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	return out
}

// Floats extracts a continuous column as float64 with NaN for missing cells
func (c *Column) Floats() ([]float64, error) {
	if c.Kind != Continuous {
		return nil, fmt.Errorf("column %q is %s, not continuous", c.Name, c.Kind)
	}
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		if !v.Valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = v.Num
	}
	return out, nil
}
