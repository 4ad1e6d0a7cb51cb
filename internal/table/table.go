// Package table is a minimal in-memory column store for tabular data whose
// cells may carry arbitrary runtime types.
package table

import (
	"fmt"
	"strings"

	"datapack/internal/domain"
)

// Kind is the physical storage type of a column.
type Kind int

// Column kinds. KindObject columns are dynamically typed: each cell keeps
// whatever value it was given.
const (
	KindObject Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindTime
)

// String returns the storage type name used in messages.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "datetime64"
	default:
		return "object"
	}
}

// IsNumeric reports whether the storage is integer or floating point.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindFloat }

// IsStringLike reports whether the storage can hold text.
func (k Kind) IsStringLike() bool { return k == KindString || k == KindObject }

// Column is a named sequence of cells. Nulls are nil (or NaN in float data).
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewColumn returns a column of the given kind.
func NewColumn(name string, kind Kind, values ...any) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// NewDynamicColumn returns a KindObject column.
func NewDynamicColumn(name string, values ...any) *Column {
	return NewColumn(name, KindObject, values...)
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// IsDynamic reports whether the column is dynamically typed.
func (c *Column) IsDynamic() bool { return c.Kind == KindObject }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if IsNull(v) {
			n++
		}
	}
	return n
}

// Types returns the distinct runtime type names of the first limit non-null
// cells in order of first appearance. limit <= 0 scans every cell.
func (c *Column) Types(limit int) []string {
	seen := map[string]bool{}
	var out []string
	inspected := 0
	for _, v := range c.Values {
		if IsNull(v) {
			continue
		}
		if limit > 0 && inspected >= limit {
			break
		}
		inspected++
		name := TypeName(v)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a table. Column names must be non-empty and unique and all
// columns must have the same length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if c == nil || c.Name == "" {
			return nil, domain.ErrValidation("column %d has no name", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, domain.ErrConflict("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, domain.ErrValidation("column %q has %d values, expected %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// FromRows builds a table from row-major data, inferring each column's kind
// from its values. Short rows are padded with nulls.
func FromRows(names []string, rows [][]any) (*Table, error) {
	columns := make([]*Column, len(names))
	for j, name := range names {
		values := make([]any, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		columns[j] = InferColumn(name, values)
	}
	for i, row := range rows {
		if len(row) > len(names) {
			return nil, domain.ErrValidation("row %d has %d values but only %d columns are named", i, len(row), len(names))
		}
	}
	return New(columns...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
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

// Row returns the cells of row i.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// DuplicateRows counts rows identical to an earlier row. Cells compare by
// runtime type and value; nulls compare equal to each other.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]struct{}, t.rows)
	dups := 0
	var sb strings.Builder
	for i := 0; i < t.rows; i++ {
		sb.Reset()
		for _, c := range t.columns {
			v := c.Values[i]
			if IsNull(v) {
				sb.WriteString("\x00null")
			} else {
				fmt.Fprintf(&sb, "%T:%v", v, v)
			}
			sb.WriteByte('\x1f')
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}
