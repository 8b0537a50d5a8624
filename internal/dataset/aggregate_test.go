package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashviz/domain/core"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal/testkit"
)

func TestAggregate_SampleSum(t *testing.T) {
	out, err := Aggregate(testkit.SampleTable(), "Category", "Value", AggSum)
	require.NoError(t, err)

	assert.Equal(t, []string{"Category", "sum_Value"}, out.ColumnNames())
	category, _ := out.Column("Category")
	sum, _ := out.Column("sum_Value")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "A", category.String(0))
	assert.Equal(t, "B", category.String(1))
	assert.Equal(t, []float64{220, 150}, sum.Numbers())
}

func TestAggregate_Functions(t *testing.T) {
	table := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("g", []string{"x", "y", "x", "x", "y"}),
		domainDataset.NewNumericColumn("v", []float64{1, 10, 3, math.NaN(), 20}),
	)

	tests := []struct {
		fn   AggFunc
		want []float64
	}{
		{AggSum, []float64{4, 30}},
		{AggMean, []float64{2, 15}},
		{AggCount, []float64{2, 2}},
		{AggMin, []float64{1, 10}},
		{AggMax, []float64{3, 20}},
	}
	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			out, err := Aggregate(table, "g", "v", tt.fn)
			require.NoError(t, err)
			col, ok := out.Column(string(tt.fn) + "_v")
			require.True(t, ok)
			assert.Equal(t, domainDataset.TypeNumeric, col.Type())
			assert.Equal(t, tt.want, col.Numbers())
		})
	}
}

func TestAggregate_CountIgnoresMissing(t *testing.T) {
	groups := make([]string, 10)
	values := make([]float64, 10)
	for i := range values {
		groups[i] = "all"
		values[i] = float64(i)
		if i < 3 {
			values[i] = math.NaN()
		}
	}
	table := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("g", groups),
		domainDataset.NewNumericColumn("v", values),
	)

	out, err := Aggregate(table, "g", "v", AggCount)
	require.NoError(t, err)
	count, _ := out.Column("count_v")
	assert.Equal(t, []float64{7}, count.Numbers())
}

func TestAggregate_MissingGroupAndEmptyPartition(t *testing.T) {
	table := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("g", []string{"a", "", "b", "", "a"}),
		domainDataset.NewNumericColumn("v", []float64{1, 2, math.NaN(), 3, 4}),
	)

	out, err := Aggregate(table, "g", "v", AggSum)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())

	g, _ := out.Column("g")
	sum, _ := out.Column("sum_v")
	assert.Equal(t, "a", g.String(0))
	assert.True(t, g.IsMissing(1), "missing group values form their own group")
	assert.Equal(t, "b", g.String(2))
	assert.Equal(t, []float64{5, 5}, sum.Numbers())
	assert.True(t, sum.IsMissing(2), "a group with no values reduces to missing")

	count, err := Aggregate(table, "g", "v", AggCount)
	require.NoError(t, err)
	c, _ := count.Column("count_v")
	assert.Equal(t, []float64{2, 2, 0}, c.Numbers())
}

func TestAggregate_KeepsGroupType(t *testing.T) {
	out, err := Aggregate(testkit.SampleTable(), "Date", "Count", AggMax)
	require.NoError(t, err)

	date, _ := out.Column("Date")
	assert.Equal(t, domainDataset.TypeTemporal, date.Type())
	assert.Equal(t, 3, out.Len())
}

func TestAggregate_MinMaxOnNonNumeric(t *testing.T) {
	table := testkit.SampleTable()

	out, err := Aggregate(table, "Category", "Date", AggMin)
	require.NoError(t, err)
	minDate, _ := out.Column("min_Date")
	assert.Equal(t, domainDataset.TypeTemporal, minDate.Type())
	assert.Equal(t, "2023-01-01", minDate.String(0))
	assert.Equal(t, "2023-01-02", minDate.String(1))

	text := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("g", []string{"k", "k", "k"}),
		domainDataset.NewTextColumn("name", []string{"pear", "apple", "plum"}),
	)
	out, err = Aggregate(text, "g", "name", AggMax)
	require.NoError(t, err)
	maxName, _ := out.Column("max_name")
	assert.Equal(t, "plum", maxName.String(0))
}

func TestAggregate_Errors(t *testing.T) {
	table := testkit.SampleTable()

	tests := []struct {
		name    string
		groupBy string
		target  string
		fn      AggFunc
		want    error
	}{
		{"unknown function", "Category", "Value", AggFunc("median"), core.ErrUnknownFunction},
		{"missing group column", "Region", "Value", AggSum, core.ErrColumnNotFound},
		{"missing target column", "Category", "Revenue", AggSum, core.ErrColumnNotFound},
		{"sum of text", "Date", "Category", AggSum, core.ErrColumnType},
		{"mean of dates", "Category", "Date", AggMean, core.ErrColumnType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Aggregate(table, tt.groupBy, tt.target, tt.fn)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, core.IsAggregationError(err))
		})
	}
}

func TestParseAggFunc(t *testing.T) {
	fn, err := ParseAggFunc(" Mean ")
	require.NoError(t, err)
	assert.Equal(t, AggMean, fn)

	_, err = ParseAggFunc("median")
	assert.ErrorIs(t, err, core.ErrUnknownFunction)

	spec := AggregationSpec{GroupBy: "Category", Target: "Value", Function: AggSum}
	assert.Equal(t, "sum_Value", spec.OutputColumn())
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	table := testkit.SampleTable()
	before := table.Clone()

	_, err := Aggregate(table, "Category", "Value", AggMean)
	require.NoError(t, err)
	assert.True(t, table.Equal(before))
}
