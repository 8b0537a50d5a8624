package charts

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"dashviz/domain/chart"
	"dashviz/domain/dataset"
	"dashviz/internal/testkit"
)

func mustChart(t *testing.T, fig Figure) *Chart {
	t.Helper()
	c, ok := fig.(*Chart)
	require.True(t, ok, "expected a chart, got placeholder %q", fig.Title())
	return c
}

func figureJSON(t *testing.T, fig Figure) gjson.Result {
	t.Helper()
	data, err := fig.JSON()
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))
	return gjson.ParseBytes(data)
}

func TestMap_EmptyTableIsPlaceholderForEveryKind(t *testing.T) {
	m := NewMapper()
	empty := testkit.SampleTable().Take(nil)

	specs := []chart.Spec{
		chart.BarSpec{X: chart.Col("Date"), Y: chart.Col("Value")},
		chart.LineSpec{X: chart.Col("Date"), Y: chart.Col("Value")},
		chart.ScatterSpec{X: chart.Col("Date"), Y: chart.Col("Value")},
		chart.PieSpec{Values: chart.Col("Value"), Names: chart.Col("Category")},
		chart.UnsupportedSpec{Name: "radar"},
	}
	for _, spec := range specs {
		t.Run(string(spec.Kind()), func(t *testing.T) {
			fig := m.Map(empty, spec)
			require.True(t, IsPlaceholder(fig))
			assert.Equal(t, "No data available", fig.Title())
		})
	}
}

func TestMap_PlaceholderMessages(t *testing.T) {
	m := NewMapper()
	table := testkit.SampleTable()

	tests := []struct {
		name string
		spec chart.Spec
		want string
	}{
		{"bar missing y", chart.BarSpec{X: chart.Col("Date")}, "Please select X and Y axes for bar chart"},
		{"line missing x", chart.LineSpec{Y: chart.Col("Value")}, "Please select X and Y axes for line chart"},
		{"scatter unset", chart.Empty(chart.KindScatter), "Please select X and Y axes for scatter plot"},
		{"pie missing names", chart.PieSpec{Values: chart.Col("Value")}, "Please select Values and Names for pie chart"},
		{"absent column", chart.BarSpec{X: chart.Col("Region"), Y: chart.Col("Value")}, "Selected columns not found in data"},
		{"absent color", chart.LineSpec{X: chart.Col("Date"), Y: chart.Col("Value"), Color: chart.Col("Region")}, "Selected columns not found in data"},
		{"unsupported", chart.UnsupportedSpec{Name: "radar"}, "Unsupported chart type: radar"},
		{"text y", chart.BarSpec{X: chart.Col("Date"), Y: chart.Col("Category")}, "Error creating chart: incompatible column type: column \"Category\" is text, numeric required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fig := m.Map(table, tt.spec)
			require.True(t, IsPlaceholder(fig))
			assert.Equal(t, tt.want, fig.Title())
		})
	}

	assert.NotEqual(t, "No data available", m.Map(table, chart.BarSpec{X: chart.Col("Date")}).Title())
}

func TestMap_Bar(t *testing.T) {
	table := dataset.MustNewTable(
		dataset.NewTextColumn("region", []string{"N", "S", "N", "E", "S"}),
		dataset.NewTextColumn("channel", []string{"web", "web", "store", "web", "web"}),
		dataset.NewNumericColumn("sales", []float64{1, 2, 3, 4, math.NaN()}),
	)

	c := mustChart(t, NewMapper().Map(table, chart.BarSpec{X: chart.Col("region"), Y: chart.Col("sales")}))
	assert.Equal(t, "Bar Chart: sales by region", c.Title())
	assert.Equal(t, []string{"N", "S", "E"}, c.Categories)
	assert.False(t, c.ShowLegend)
	require.Len(t, c.Series, 1)
	assert.Equal(t, []Point{{Label: "N", Y: 4}, {Label: "S", Y: 2}, {Label: "E", Y: 4}}, c.Series[0].Points)

	colored := mustChart(t, NewMapper().Map(table, chart.BarSpec{
		X: chart.Col("region"), Y: chart.Col("sales"), Color: chart.Col("channel"),
	}))
	assert.True(t, colored.ShowLegend)
	require.Len(t, colored.Series, 2)
	assert.Equal(t, "web", colored.Series[0].Name)
	assert.Equal(t, "store", colored.Series[1].Name)
	assert.NotEqual(t, c.ID(), colored.ID(), "color grouping changes the DOM id")

	doc := figureJSON(t, colored)
	assert.Equal(t, "bar", doc.Get("kind").String())
	assert.Equal(t, int64(2), doc.Get("option.series.#").Int())
	assert.Equal(t, "total", doc.Get("option.series.0.stack").String())
}

func TestMap_LineSortsByX(t *testing.T) {
	table := dataset.MustNewTable(
		dataset.NewNumericColumn("x", []float64{3, 1, math.NaN(), 2}),
		dataset.NewNumericColumn("y", []float64{30, 10, 99, 20}),
	)

	c := mustChart(t, NewMapper().Map(table, chart.LineSpec{X: chart.Col("x"), Y: chart.Col("y")}))
	assert.Equal(t, "Line Chart: y over x", c.Title())
	assert.Equal(t, AxisValue, c.XAxisType)
	assert.True(t, c.Markers)

	var xs, ys []float64
	for _, p := range c.Series[0].Points {
		require.NotNil(t, p.X)
		xs = append(xs, *p.X)
		ys = append(ys, p.Y)
	}
	assert.Equal(t, []float64{1, 2, 3}, xs)
	assert.Equal(t, []float64{10, 20, 30}, ys)
}

func TestMap_LineTemporal(t *testing.T) {
	table := testkit.SampleTable().Take([]int{2, 0, 1})

	c := mustChart(t, NewMapper().Map(table, chart.LineSpec{X: chart.Col("Date"), Y: chart.Col("Value")}))
	assert.Equal(t, AxisTime, c.XAxisType)
	labels := []string{}
	for _, p := range c.Series[0].Points {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"2023-01-01", "2023-01-02", "2023-01-03"}, labels)

	doc := figureJSON(t, c)
	first := doc.Get("option.series.0.data.0.value.0").Int()
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), first)
}

func TestMap_Scatter(t *testing.T) {
	table := dataset.MustNewTable(
		dataset.NewNumericColumn("x", []float64{1, 2, 3, 4}),
		dataset.NewNumericColumn("y", []float64{5, math.NaN(), 7, 8}),
		dataset.NewNumericColumn("weight", []float64{10, 20, 30, 20}),
		dataset.NewTextColumn("kind", []string{"a", "b", "a", "b"}),
	)

	c := mustChart(t, NewMapper().Map(table, chart.ScatterSpec{
		X: chart.Col("x"), Y: chart.Col("y"), Size: chart.Col("weight"),
	}))
	assert.Equal(t, "Scatter Plot: y vs x", c.Title())
	assert.True(t, c.ShowLegend, "legend is shown when size is set")
	assert.Equal(t, []string{"x", "y", "weight", "kind"}, c.HoverColumns)

	points := c.Series[0].Points
	require.Len(t, points, 3, "rows with missing y are skipped")
	assert.Equal(t, minSymbolSize, points[0].Size)
	assert.Equal(t, maxSymbolSize, points[1].Size)
	assert.Equal(t, 18, points[2].Size)
	assert.Equal(t, "a", points[1].Hover["kind"])

	plain := mustChart(t, NewMapper().Map(table, chart.ScatterSpec{X: chart.Col("x"), Y: chart.Col("y")}))
	assert.False(t, plain.ShowLegend)
	assert.Zero(t, plain.Series[0].Points[0].Size)
}

func TestMap_Pie(t *testing.T) {
	table := dataset.MustNewTable(
		dataset.NewTextColumn("name", []string{"b", "a", "b", "c"}),
		dataset.NewNumericColumn("v", []float64{3, 2, 4, 1}),
	)

	c := mustChart(t, NewMapper().Map(table, chart.PieSpec{Values: chart.Col("v"), Names: chart.Col("name")}))
	assert.Equal(t, "Pie Chart: v by name", c.Title())
	assert.True(t, c.ShowLegend)
	assert.True(t, c.LegendVertical)
	assert.Equal(t, []Point{{Label: "b", Y: 7}, {Label: "a", Y: 2}, {Label: "c", Y: 1}}, c.Series[0].Points)

	doc := figureJSON(t, c)
	assert.Equal(t, "b", doc.Get("option.series.0.data.0.name").String())
	assert.Equal(t, 7.0, doc.Get("option.series.0.data.0.value").Float())
	assert.Equal(t, "vertical", doc.Get("option.legend.orient").String())
}

func TestMap_Deterministic(t *testing.T) {
	m := NewMapper()
	spec := chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Value")}

	a, err := m.Map(testkit.SampleTable(), spec).JSON()
	require.NoError(t, err)
	b, err := m.Map(testkit.SampleTable(), spec).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestMap_RenderHTML(t *testing.T) {
	m := NewMapper()
	for _, fig := range []Figure{
		m.Map(testkit.SampleTable(), chart.PieSpec{Values: chart.Col("Value"), Names: chart.Col("Category")}),
		m.Map(testkit.SampleTable(), chart.BarSpec{}),
	} {
		var buf bytes.Buffer
		require.NoError(t, fig.RenderHTML(&buf))
		assert.Contains(t, buf.String(), "echarts")
		assert.Contains(t, buf.String(), fig.Title())
	}
}

func TestPlaceholderJSON(t *testing.T) {
	doc := figureJSON(t, NewPlaceholder("No data available"))
	assert.True(t, doc.Get("placeholder").Bool())
	assert.Equal(t, "No data available", doc.Get("message").String())
}

func TestAxisTitle(t *testing.T) {
	assert.Equal(t, "Unit Price", AxisTitle("unit_price"))
	assert.Equal(t, "Sum Value", AxisTitle("sum_Value"))
	assert.Equal(t, "Date", AxisTitle("Date"))
}

func TestHeatmap(t *testing.T) {
	m := NewMapper()

	fig := m.Heatmap(testkit.SampleTable())
	c := mustChart(t, fig)
	assert.Equal(t, []string{"Value", "Count"}, c.Categories)
	require.Len(t, c.cells, 4)
	assert.Equal(t, 1.0, c.cells[0][2])

	only := dataset.MustNewTable(dataset.NewNumericColumn("a", []float64{1, 2}))
	assert.True(t, IsPlaceholder(m.Heatmap(only)))
}

func TestHistogram(t *testing.T) {
	table := dataset.MustNewTable(
		dataset.NewNumericColumn("v", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}),
		dataset.NewTextColumn("t", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}),
	)
	m := NewMapper()

	c := mustChart(t, m.Histogram(table, "v", 5))
	require.Len(t, c.Series[0].Points, 5)
	total := 0.0
	for _, p := range c.Series[0].Points {
		total += p.Y
	}
	assert.Equal(t, 10.0, total)
	assert.Equal(t, 2.0, c.Series[0].Points[4].Y, "max value falls in the last bin")

	assert.True(t, IsPlaceholder(m.Histogram(table, "t", 5)))
	assert.True(t, IsPlaceholder(m.Histogram(table, "missing", 5)))
}

func TestRenderPage(t *testing.T) {
	m := NewMapper()
	table := testkit.SampleTable()
	figures := []Figure{
		m.Map(table, chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Value")}),
		m.Map(table, chart.LineSpec{X: chart.Col("Date")}),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, "Dashboard", figures))
	html := buf.String()
	assert.Contains(t, html, "Dashboard")
	assert.Contains(t, html, PageID(figures[0], 0))
}

func TestRenderPage_RepeatedFiguresGetOwnBoxes(t *testing.T) {
	m := NewMapper()
	table := testkit.SampleTable()
	bar := m.Map(table, chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Value")})
	figures := []Figure{
		bar,
		m.Map(table, chart.BarSpec{X: chart.Col("Category"), Y: chart.Col("Value")}),
		m.Map(table, chart.BarSpec{X: chart.Col("Region"), Y: chart.Col("Value")}),
		m.Map(table, chart.PieSpec{Values: chart.Col("Value"), Names: chart.Col("Region")}),
	}
	require.Equal(t, bar.ID(), figures[1].ID())
	require.True(t, IsPlaceholder(figures[2]))
	require.Equal(t, figures[2].ID(), figures[3].ID())

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, "Dashboard", figures))
	html := buf.String()

	seen := make(map[string]bool)
	for i, f := range figures {
		id := PageID(f, i)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Equal(t, 1, strings.Count(html, `id="`+id+`"`), "box for figure %d", i)
	}
}
