package dataset

import (
	"encoding/json"
	"fmt"

	domainDataset "dashviz/domain/dataset"
)

// ColumnFilter is a predicate over one column. It is either a
// MembershipFilter or a RangeFilter.
type ColumnFilter interface {
	keep(col *domainDataset.Column, row int) bool
	isColumnFilter()
}

// MembershipFilter keeps rows whose value is one of Values. Values are
// compared against the display form of the cell; missing cells never match.
type MembershipFilter struct {
	Values []string
}

// RangeFilter keeps rows whose value lies in [Min, Max]. Temporal cells are
// compared as Unix seconds; text and missing cells never match.
type RangeFilter struct {
	Min float64
	Max float64
}

// In builds a membership filter.
func In(values ...string) MembershipFilter {
	return MembershipFilter{Values: values}
}

// Between builds a range filter.
func Between(min, max float64) RangeFilter {
	return RangeFilter{Min: min, Max: max}
}

func (f MembershipFilter) keep(col *domainDataset.Column, row int) bool {
	if col.IsMissing(row) {
		return false
	}
	v := col.String(row)
	for _, allowed := range f.Values {
		if v == allowed {
			return true
		}
	}
	return false
}

func (f RangeFilter) keep(col *domainDataset.Column, row int) bool {
	v, ok := col.Number(row)
	if !ok {
		return false
	}
	return f.Min <= v && v <= f.Max
}

func (MembershipFilter) isColumnFilter() {}
func (RangeFilter) isColumnFilter()      {}

// FilterSet maps column names to one filter each. Absent columns are
// unconstrained.
type FilterSet map[string]ColumnFilter

// ApplyFilters returns a new table holding the rows that satisfy every
// filter, in their original order, with all columns. Filters naming columns
// absent from the table are ignored. The input is never modified and the
// result never shares cells with it.
func ApplyFilters(table *domainDataset.Table, filters FilterSet) *domainDataset.Table {
	type bound struct {
		col    *domainDataset.Column
		filter ColumnFilter
	}

	active := make([]bound, 0, len(filters))
	for name, filter := range filters {
		if filter == nil {
			continue
		}
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		active = append(active, bound{col: col, filter: filter})
	}

	if len(active) == 0 {
		return table.Clone()
	}

	// Single pass: a row survives only if it passes all filters
	rows := make([]int, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		pass := true
		for _, b := range active {
			if !b.filter.keep(b.col, i) {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, i)
		}
	}

	return table.Take(rows)
}

// FilterSpec is the wire form of a column filter: either Values, or Min and
// Max.
type FilterSpec struct {
	Values []string `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// ParseFilterSet converts wire filters into a FilterSet.
func ParseFilterSet(specs map[string]FilterSpec) (FilterSet, error) {
	set := make(FilterSet, len(specs))
	for name, spec := range specs {
		f, err := spec.Filter()
		if err != nil {
			return nil, fmt.Errorf("filter for %q: %w", name, err)
		}
		set[name] = f
	}
	return set, nil
}

// Filter converts the wire form into a ColumnFilter.
func (s FilterSpec) Filter() (ColumnFilter, error) {
	hasRange := s.Min != nil || s.Max != nil
	switch {
	case s.Values != nil && hasRange:
		return nil, fmt.Errorf("values and min/max are mutually exclusive")
	case hasRange:
		if s.Min == nil || s.Max == nil {
			return nil, fmt.Errorf("range filter needs both min and max")
		}
		return Between(*s.Min, *s.Max), nil
	case s.Values != nil:
		return In(s.Values...), nil
	}
	return nil, fmt.Errorf("filter needs values or min/max")
}

// UnmarshalJSON rejects unknown keys so that typos do not silently widen a filter.
func (s *FilterSpec) UnmarshalJSON(b []byte) error {
	type plain FilterSpec
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key := range raw {
		switch key {
		case "values", "min", "max":
		default:
			return fmt.Errorf("unknown filter key %q", key)
		}
	}
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = FilterSpec(p)
	return nil
}

// Describe returns the wire form of a filter.
func Describe(f ColumnFilter) FilterSpec {
	switch v := f.(type) {
	case MembershipFilter:
		values := v.Values
		if values == nil {
			values = []string{}
		}
		return FilterSpec{Values: values}
	case RangeFilter:
		min, max := v.Min, v.Max
		return FilterSpec{Min: &min, Max: &max}
	}
	return FilterSpec{}
}
