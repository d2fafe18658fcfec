package analysis

import (
	"fmt"
	"sort"
	"strings"

	"finprobe/domain/core"
	"finprobe/domain/workbook"
)

// SortOrder returns row indices stably sorted by the column's values, missing values last.
// Values of different types cannot be ordered against each other and yield core.ErrUnsortable.
func SortOrder(c *workbook.Column) ([]int, error) {
	var kind workbook.ValueType
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		if kind == "" {
			kind = v.Type
			continue
		}
		if v.Type != kind {
			return nil, fmt.Errorf("%w: column %q mixes %s and %s values", core.ErrUnsortable, c.Name, kind, v.Type)
		}
	}

	order := make([]int, len(c.Values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := c.Values[order[i]], c.Values[order[j]]
		if a.IsMissing() || b.IsMissing() {
			return !a.IsMissing() && b.IsMissing()
		}
		return less(a, b)
	})
	return order, nil
}

func less(a, b workbook.Value) bool {
	switch a.Type {
	case workbook.ValueTypeNumeric:
		return a.Num < b.Num
	case workbook.ValueTypeDate:
		return a.Time.Before(b.Time)
	case workbook.ValueTypeBool:
		return !a.Bool && b.Bool
	}
	return strings.Compare(a.Str, b.Str) < 0
}

// floatsInOrder returns the column's numeric values following order, skipping missing cells
func floatsInOrder(c *workbook.Column, order []int) []float64 {
	if order == nil {
		return c.Floats()
	}
	out := make([]float64, 0, len(order))
	for _, i := range order {
		if v, ok := c.FloatAt(i); ok {
			out = append(out, v)
		}
	}
	return out
}
