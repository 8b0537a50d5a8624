package dataset

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainDataset "dashviz/domain/dataset"
	"dashviz/internal/testkit"
)

func ordersTable() *domainDataset.Table {
	return domainDataset.MustNewTable(
		domainDataset.NewTextColumn("region", []string{"North", "South", "", "North", "East", "West"}),
		domainDataset.NewNumericColumn("amount", []float64{10, 25, 30, math.NaN(), 50, 5}),
		domainDataset.NewTemporalColumn("day", []time.Time{
			testkit.Day(2024, 1, 1), testkit.Day(2024, 1, 2), testkit.Day(2024, 1, 3),
			testkit.Day(2024, 1, 4), {}, testkit.Day(2024, 1, 6),
		}),
	)
}

func TestApplyFilters_EmptySetCopies(t *testing.T) {
	table := ordersTable()

	for _, filters := range []FilterSet{nil, {}} {
		out := ApplyFilters(table, filters)
		require.True(t, out.Equal(table))

		// Mutating the result leaves the input untouched
		col, _ := out.Column("region")
		col.Set(0, domainDataset.TextValue("changed"))
		orig, _ := table.Column("region")
		assert.Equal(t, "North", orig.String(0))
	}
}

func TestApplyFilters_Membership(t *testing.T) {
	out := ApplyFilters(ordersTable(), FilterSet{"region": In("North", "East")})

	region, _ := out.Column("region")
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"North", "North", "East"},
		[]string{region.String(0), region.String(1), region.String(2)})
	assert.Equal(t, 3, out.Width(), "all columns are kept")
}

func TestApplyFilters_MissingIsNeverAMember(t *testing.T) {
	out := ApplyFilters(ordersTable(), FilterSet{"region": In("")})
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, 3, out.Width())
}

func TestApplyFilters_MembershipOnNumbers(t *testing.T) {
	out := ApplyFilters(ordersTable(), FilterSet{"amount": In("25", "5")})
	amount, _ := out.Column("amount")
	assert.Equal(t, []float64{25, 5}, amount.Numbers())
}

func TestApplyFilters_Range(t *testing.T) {
	table := ordersTable()
	lo, hi := 10.0, 30.0

	out := ApplyFilters(table, FilterSet{"amount": Between(lo, hi)})

	amount, _ := out.Column("amount")
	assert.Equal(t, []float64{10, 25, 30}, amount.Numbers(), "bounds are inclusive")
	for i := 0; i < out.Len(); i++ {
		v, ok := amount.Number(i)
		require.True(t, ok, "missing values never satisfy a range")
		assert.True(t, lo <= v && v <= hi)
	}
}

func TestApplyFilters_RangeOnTemporal(t *testing.T) {
	lo := float64(testkit.Day(2024, 1, 2).Unix())
	hi := float64(testkit.Day(2024, 1, 4).Unix())

	out := ApplyFilters(ordersTable(), FilterSet{"day": Between(lo, hi)})

	day, _ := out.Column("day")
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "2024-01-02", day.String(0))
	assert.Equal(t, "2024-01-04", day.String(2))
}

func TestApplyFilters_RangeOnTextMatchesNothing(t *testing.T) {
	out := ApplyFilters(ordersTable(), FilterSet{"region": Between(-1e9, 1e9)})
	assert.Equal(t, 0, out.Len())
}

func TestApplyFilters_ConjunctionAndAbsentColumns(t *testing.T) {
	out := ApplyFilters(ordersTable(), FilterSet{
		"region":  In("North", "South", "West"),
		"amount":  Between(6, 100),
		"missing": In("whatever"),
	})

	region, _ := out.Column("region")
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "North", region.String(0))
	assert.Equal(t, "South", region.String(1))
}

func TestApplyFilters_Idempotent(t *testing.T) {
	filters := FilterSet{"amount": Between(0, 40)}
	once := ApplyFilters(ordersTable(), filters)
	twice := ApplyFilters(once, filters)
	assert.True(t, once.Equal(twice))
}

func TestParseFilterSet(t *testing.T) {
	var wire map[string]FilterSpec
	require.NoError(t, json.Unmarshal([]byte(`{
		"region": {"values": ["North"]},
		"amount": {"min": 1, "max": 20}
	}`), &wire))

	filters, err := ParseFilterSet(wire)
	require.NoError(t, err)
	assert.Equal(t, In("North"), filters["region"])
	assert.Equal(t, Between(1, 20), filters["amount"])

	round := Describe(filters["amount"])
	assert.Equal(t, 1.0, *round.Min)
	assert.Equal(t, 20.0, *round.Max)
}

func TestParseFilterSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"a": {}}`},
		{"half range", `{"a": {"min": 1}}`},
		{"both kinds", `{"a": {"values": ["x"], "min": 1, "max": 2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wire map[string]FilterSpec
			require.NoError(t, json.Unmarshal([]byte(tt.body), &wire))
			_, err := ParseFilterSet(wire)
			assert.Error(t, err)
		})
	}

	var wire map[string]FilterSpec
	assert.Error(t, json.Unmarshal([]byte(`{"a": {"vals": ["x"]}}`), &wire))
}
