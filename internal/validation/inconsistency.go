package validation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"datapack/internal/table"
)

// Inconsistency is one cell whose runtime type differs from the majority type
// of its column.
type Inconsistency struct {
	Row          int    `json:"row"`
	Column       string `json:"column"`
	Value        any    `json:"value"`
	ActualType   string `json:"actual_type"`
	ExpectedType string `json:"expected_type"`
}

// inconsistentCells returns every non-null cell of c whose type is not the
// column's most frequent type. Ties go to the type seen first.
func inconsistentCells(c *table.Column) []Inconsistency {
	counts := map[string]int{}
	var order []string
	for _, v := range c.Values {
		if table.IsNull(v) {
			continue
		}
		name := table.TypeName(v)
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	if len(order) < 2 {
		return nil
	}

	majority := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[majority] {
			majority = name
		}
	}

	var out []Inconsistency
	for i, v := range c.Values {
		if table.IsNull(v) {
			continue
		}
		if name := table.TypeName(v); name != majority {
			out = append(out, Inconsistency{
				Row:          i,
				Column:       c.Name,
				Value:        v,
				ActualType:   name,
				ExpectedType: majority,
			})
		}
	}
	return out
}

// WriteInconsistenciesCSV writes the records as CSV with a
// row,column,value,actual_type,expected_type header.
func WriteInconsistenciesCSV(w io.Writer, items []Inconsistency) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "column", "value", "actual_type", "expected_type"}); err != nil {
		return fmt.Errorf("write inconsistencies header: %w", err)
	}
	for _, item := range items {
		record := []string{
			strconv.Itoa(item.Row),
			item.Column,
			fmt.Sprint(item.Value),
			item.ActualType,
			item.ExpectedType,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write inconsistency row %d: %w", item.Row, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush inconsistencies: %w", err)
	}
	return nil
}
