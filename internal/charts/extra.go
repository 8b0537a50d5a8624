package charts

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dashviz/domain/dataset"
)

// DefaultHistogramBins is used when Histogram is called with bins <= 0.
const DefaultHistogramBins = 20

// Heatmap builds the Pearson correlation matrix of all numeric columns.
// Each pair uses only the rows where both values are present.
func (m *Mapper) Heatmap(t *dataset.Table) (fig Figure) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("[ChartMapper] panic while building heatmap: %v", r)
			fig = NewPlaceholder("Error creating chart: %v", r)
		}
	}()

	if t.IsEmpty() {
		return NewPlaceholder("No data available")
	}
	names := t.ColumnsOfType(dataset.TypeNumeric)
	if len(names) < 2 {
		return NewPlaceholder("Need at least two numeric columns for a correlation heatmap")
	}

	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}

	c := &Chart{
		Kind:       kindHeatmap,
		ChartTitle: "Correlation Heatmap",
		XAxisType:  AxisCategory,
		Categories: names,
	}
	points := make([]Point, 0, len(names)*len(names))
	for i := range cols {
		for j := range cols {
			r := 1.0
			if i != j {
				r = correlation(cols[i], cols[j])
			}
			var v interface{} = "-"
			if !math.IsNaN(r) {
				v = math.Round(r*1000) / 1000
				points = append(points, Point{Label: names[i] + "|" + names[j], Y: r})
			}
			c.cells = append(c.cells, [3]interface{}{i, j, v})
		}
	}
	c.Series = []Series{{Name: "correlation", Points: points}}
	return c
}

func correlation(a, b *dataset.Column) float64 {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		x, okX := a.Number(i)
		y, okY := b.Number(i)
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Histogram counts the values of a numeric or temporal column in equal-width
// bins.
func (m *Mapper) Histogram(t *dataset.Table, name string, bins int) (fig Figure) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("[ChartMapper] panic while building histogram of %s: %v", name, r)
			fig = NewPlaceholder("Error creating chart: %v", r)
		}
	}()

	if t.IsEmpty() {
		return NewPlaceholder("No data available")
	}
	if name == "" {
		return NewPlaceholder("Please select a column for histogram")
	}
	col, ok := t.Column(name)
	if !ok {
		return NewPlaceholder("Selected columns not found in data")
	}
	if col.Type() == dataset.TypeText {
		return NewPlaceholder("Error creating chart: column %q is text", name)
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	values := col.Numbers()
	if len(values) == 0 {
		return NewPlaceholder("No data available")
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		bins = 1
	}
	dividers := make([]float64, bins+1)
	if bins == 1 {
		dividers[0] = lo
	} else {
		floats.Span(dividers, lo, hi)
	}
	// the last bin is closed on the right
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	points := make([]Point, bins)
	categories := make([]string, bins)
	for i := range counts {
		categories[i] = binLabel(col, dividers[i], dividers[i+1])
		points[i] = Point{Label: categories[i], Y: counts[i]}
	}

	return &Chart{
		Kind:       kindHistogram,
		ChartTitle: fmt.Sprintf("Histogram: %s", name),
		XTitle:     AxisTitle(name),
		YTitle:     "Count",
		XAxisType:  AxisCategory,
		Categories: categories,
		Series:     []Series{{Name: "count", Points: points}},
	}
}

func binLabel(col *dataset.Column, lo, hi float64) string {
	if col.Type() == dataset.TypeTemporal {
		return fmt.Sprintf("%s - %s", formatUnix(lo), formatUnix(hi))
	}
	return fmt.Sprintf("%s - %s", formatBound(lo), formatBound(hi))
}

func formatUnix(sec float64) string {
	whole, frac := math.Modf(sec)
	return dataset.FormatTime(time.Unix(int64(whole), int64(frac*1e9)).UTC())
}

func formatBound(v float64) string {
	return dataset.FormatNumber(math.Round(v*1000) / 1000)
}
