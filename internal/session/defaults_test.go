package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dashviz/domain/chart"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal/testkit"
)

func TestDefaults(t *testing.T) {
	textOnly := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("city", []string{"Oslo", "Rome"}),
	)
	oneNumeric := domainDataset.MustNewTable(
		domainDataset.NewTextColumn("city", []string{"Oslo", "Rome"}),
		domainDataset.NewNumericColumn("temp", []float64{4, 18}),
	)

	tests := []struct {
		name  string
		table *domainDataset.Table
		spec  chart.Spec
		want  chart.Spec
	}{
		{
			name:  "set fields are kept",
			table: testkit.SampleTable(),
			spec:  chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Count")},
			want:  chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Count")},
		},
		{
			name:  "stale color is cleared",
			table: testkit.SampleTable(),
			spec:  chart.LineSpec{X: chart.Col("Date"), Y: chart.Col("Value"), Color: chart.Col("gone")},
			want:  chart.LineSpec{X: chart.Col("Date"), Y: chart.Col("Value")},
		},
		{
			name:  "no numeric column leaves measure unset",
			table: textOnly,
			spec:  chart.Empty(chart.KindBar),
			want:  chart.BarSpec{X: chart.Col("city")},
		},
		{
			name:  "scatter with one numeric column",
			table: oneNumeric,
			spec:  chart.Empty(chart.KindScatter),
			want:  chart.ScatterSpec{X: chart.Col("temp"), Y: chart.Col("temp")},
		},
		{
			name:  "pie",
			table: oneNumeric,
			spec:  chart.PieSpec{Names: chart.Col("missing")},
			want:  chart.PieSpec{Values: chart.Col("temp"), Names: chart.Col("city")},
		},
		{
			name:  "unsupported kind untouched",
			table: oneNumeric,
			spec:  chart.UnsupportedSpec{Name: "radar"},
			want:  chart.UnsupportedSpec{Name: "radar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Defaults(tt.table, tt.spec))
		})
	}
}
