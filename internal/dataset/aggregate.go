package dataset

import (
	"fmt"
	"strings"

	"dashviz/domain/core"
	domainDataset "dashviz/domain/dataset"
)

// AggFunc is a reduction applied to each group of an aggregation.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// AggFuncs returns the supported functions in display order.
func AggFuncs() []AggFunc {
	return []AggFunc{AggSum, AggMean, AggCount, AggMin, AggMax}
}

// Valid reports whether f is a supported function.
func (f AggFunc) Valid() bool {
	switch f {
	case AggSum, AggMean, AggCount, AggMin, AggMax:
		return true
	}
	return false
}

// ParseAggFunc parses a function name, case-insensitively.
func ParseAggFunc(s string) (AggFunc, error) {
	f := AggFunc(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", core.NewUnknownFunctionError(s)
	}
	return f, nil
}

// AggregationSpec names one group-by reduction.
type AggregationSpec struct {
	GroupBy  string  `json:"group_by"`
	Target   string  `json:"target"`
	Function AggFunc `json:"function"`
}

// OutputColumn is the name of the reduced column.
func (s AggregationSpec) OutputColumn() string {
	return fmt.Sprintf("%s_%s", s.Function, s.Target)
}

// Apply runs the aggregation on t.
func (s AggregationSpec) Apply(t *domainDataset.Table) (*domainDataset.Table, error) {
	return Aggregate(t, s.GroupBy, s.Target, s.Function)
}

// Aggregate groups t by the values of groupBy and reduces target within each
// group. The result has exactly two columns: the group column, keeping its
// type, and "{fn}_{target}". Groups appear in order of first appearance and
// missing group values form a group of their own.
//
// It fails with core.ErrUnknownFunction for an unsupported fn,
// core.ErrColumnNotFound when groupBy or target is absent, and
// core.ErrColumnType when sum or mean targets a non-numeric column.
func Aggregate(t *domainDataset.Table, groupBy, target string, fn AggFunc) (*domainDataset.Table, error) {
	if !fn.Valid() {
		return nil, core.NewUnknownFunctionError(string(fn))
	}
	groupCol, ok := t.Column(groupBy)
	if !ok {
		return nil, core.NewColumnNotFoundError(groupBy)
	}
	targetCol, ok := t.Column(target)
	if !ok {
		return nil, core.NewColumnNotFoundError(target)
	}
	if (fn == AggSum || fn == AggMean) && targetCol.Type() != domainDataset.TypeNumeric {
		return nil, core.NewColumnTypeError(target, domainDataset.TypeNumeric.String(), targetCol.Type().String())
	}

	groups := partition(groupCol)

	keys := make([]domainDataset.Value, len(groups))
	results := make([]domainDataset.Value, len(groups))
	for g, rows := range groups {
		keys[g] = groupCol.Value(rows[0])
		results[g] = reduce(targetCol, rows, fn)
	}

	resultType := targetCol.Type()
	if fn == AggSum || fn == AggMean || fn == AggCount {
		resultType = domainDataset.TypeNumeric
	}

	out, err := domainDataset.NewTable(
		domainDataset.NewColumn(groupBy, groupCol.Type(), keys),
		domainDataset.NewColumn(fmt.Sprintf("%s_%s", fn, target), resultType, results),
	)
	if err != nil {
		// group-by and output names collide, e.g. grouping by "sum_x"
		return nil, fmt.Errorf("failed to build aggregation result: %w", err)
	}
	return out, nil
}

// partition returns row indices per distinct value of col, groups ordered by
// first appearance.
func partition(col *domainDataset.Column) [][]int {
	var groups [][]int
	index := make(map[string]int)
	missing := -1

	for i := 0; i < col.Len(); i++ {
		key, ok := col.Key(i)
		if !ok {
			if missing < 0 {
				missing = len(groups)
				groups = append(groups, nil)
			}
			groups[missing] = append(groups[missing], i)
			continue
		}
		g, seen := index[key]
		if !seen {
			g = len(groups)
			index[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func reduce(col *domainDataset.Column, rows []int, fn AggFunc) domainDataset.Value {
	present := make([]int, 0, len(rows))
	for _, r := range rows {
		if !col.IsMissing(r) {
			present = append(present, r)
		}
	}

	if fn == AggCount {
		return domainDataset.NumberValue(float64(len(present)))
	}
	if len(present) == 0 {
		return domainDataset.MissingValue()
	}

	switch fn {
	case AggSum, AggMean:
		var sum float64
		for _, r := range present {
			sum += col.Value(r).Number
		}
		if fn == AggMean {
			sum /= float64(len(present))
		}
		return domainDataset.NumberValue(sum)
	case AggMin, AggMax:
		best := present[0]
		for _, r := range present[1:] {
			c := col.Compare(r, best)
			if (fn == AggMin && c < 0) || (fn == AggMax && c > 0) {
				best = r
			}
		}
		return col.Value(best)
	}
	return domainDataset.MissingValue()
}
