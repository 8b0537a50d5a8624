package session

import (
	"dashviz/domain/chart"
	domainDataset "dashviz/domain/dataset"
)

// Defaults fills the required fields of spec that are unset or name a
// column t lacks, and clears optional fields naming absent columns. Bar,
// line and pie categories take the first column; measures take the first
// numeric column. Scatter plots prefer two distinct numeric columns.
// Fields stay unset when t has no suitable column.
func Defaults(t *domainDataset.Table, spec chart.Spec) chart.Spec {
	names := t.ColumnNames()
	numeric := t.ColumnsOfType(domainDataset.TypeNumeric)

	first := pick(names, 0)
	firstNumeric := pick(numeric, 0)
	secondNumeric := pick(numeric, 1)
	if !secondNumeric.IsSet() {
		secondNumeric = firstNumeric
	}

	fill := func(f, fallback chart.Field) chart.Field {
		if f.IsSet() && t.HasColumn(f.Name()) {
			return f
		}
		return fallback
	}
	optional := func(f chart.Field) chart.Field {
		if f.IsSet() && !t.HasColumn(f.Name()) {
			return chart.Unset()
		}
		return f
	}

	switch s := spec.(type) {
	case chart.BarSpec:
		return chart.BarSpec{X: fill(s.X, first), Y: fill(s.Y, firstNumeric), Color: optional(s.Color)}
	case chart.LineSpec:
		return chart.LineSpec{X: fill(s.X, first), Y: fill(s.Y, firstNumeric), Color: optional(s.Color)}
	case chart.ScatterSpec:
		return chart.ScatterSpec{
			X:     fill(s.X, firstNumeric),
			Y:     fill(s.Y, secondNumeric),
			Color: optional(s.Color),
			Size:  optional(s.Size),
		}
	case chart.PieSpec:
		return chart.PieSpec{Values: fill(s.Values, firstNumeric), Names: fill(s.Names, first)}
	}
	return spec
}

func pick(names []string, i int) chart.Field {
	if i < len(names) {
		return chart.Col(names[i])
	}
	return chart.Unset()
}
