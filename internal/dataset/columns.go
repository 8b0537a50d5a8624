package dataset

import (
	"sort"

	domainDataset "dashviz/domain/dataset"
)

const sampleValueCount = 3

// ColumnInfo describes one column for column pickers and the overview.
type ColumnInfo struct {
	Name         string                   `json:"name"`
	Type         domainDataset.ColumnType `json:"type"`
	NullCount    int                      `json:"null_count"`
	UniqueCount  int                      `json:"unique_count"`
	SampleValues []string                 `json:"sample_values"`
	Min          *float64                 `json:"min,omitempty"`
	Max          *float64                 `json:"max,omitempty"`
	Mean         *float64                 `json:"mean,omitempty"`
}

// DescribeColumns returns per-column information in column order.
func DescribeColumns(t *domainDataset.Table) []ColumnInfo {
	cols := t.Columns()
	infos := make([]ColumnInfo, 0, len(cols))
	for _, col := range cols {
		info := ColumnInfo{
			Name:         col.Name(),
			Type:         col.Type(),
			NullCount:    col.MissingCount(),
			UniqueCount:  len(distinct(col)),
			SampleValues: samples(col, sampleValueCount),
		}
		if col.Type() == domainDataset.TypeNumeric {
			if nums := col.Numbers(); len(nums) > 0 {
				min, max, sum := nums[0], nums[0], 0.0
				for _, v := range nums {
					if v < min {
						min = v
					}
					if v > max {
						max = v
					}
					sum += v
				}
				mean := sum / float64(len(nums))
				info.Min, info.Max, info.Mean = &min, &max, &mean
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// FilterOption is what a filter widget offers for a column: the distinct
// values for text columns, or the bounds for numeric and temporal ones.
type FilterOption struct {
	Column string                   `json:"column"`
	Type   domainDataset.ColumnType `json:"type"`
	Values []string                 `json:"values,omitempty"`
	Min    *float64                 `json:"min,omitempty"`
	Max    *float64                 `json:"max,omitempty"`
}

// FilterOptions returns a filter option per column. Text values are sorted.
func FilterOptions(t *domainDataset.Table) []FilterOption {
	cols := t.Columns()
	out := make([]FilterOption, 0, len(cols))
	for _, col := range cols {
		opt := FilterOption{Column: col.Name(), Type: col.Type()}
		if col.Type() == domainDataset.TypeText {
			opt.Values = distinct(col)
			sort.Strings(opt.Values)
		} else if nums := col.Numbers(); len(nums) > 0 {
			min, max := nums[0], nums[0]
			for _, v := range nums[1:] {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			opt.Min, opt.Max = &min, &max
		}
		out = append(out, opt)
	}
	return out
}

// distinct returns the display strings of non-missing values in first
// appearance order.
func distinct(col *domainDataset.Column) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < col.Len(); i++ {
		key, ok := col.Key(i)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, col.String(i))
	}
	return out
}

func samples(col *domainDataset.Column, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < col.Len() && len(out) < n; i++ {
		if !col.IsMissing(i) {
			out = append(out, col.String(i))
		}
	}
	return out
}
