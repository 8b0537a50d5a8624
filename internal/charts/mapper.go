package charts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dashviz/domain/chart"
	"dashviz/domain/core"
	"dashviz/domain/dataset"
	"dashviz/internal"
)

const (
	kindHeatmap   chart.Kind = "heatmap"
	kindHistogram chart.Kind = "histogram"

	minSymbolSize = 6
	maxSymbolSize = 30

	missingGroup = "(missing)"
)

// Mapper turns chart specs into figures. It never fails: every problem
// becomes a Placeholder.
type Mapper struct {
	logger *internal.Logger
}

// NewMapper creates a mapper logging to the default logger.
func NewMapper() *Mapper {
	return &Mapper{logger: internal.DefaultLogger}
}

// Map builds the figure for spec over table.
func (m *Mapper) Map(table *dataset.Table, spec chart.Spec) (fig Figure) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("[ChartMapper] panic while building %s chart: %v", kindOf(spec), r)
			fig = NewPlaceholder("Error creating chart: %v", r)
		}
	}()

	if table.IsEmpty() {
		return NewPlaceholder("No data available")
	}
	if spec == nil {
		return NewPlaceholder("Unsupported chart type: ")
	}
	if !spec.Kind().Supported() {
		return NewPlaceholder("Unsupported chart type: %s", spec.Kind())
	}
	if !chart.Complete(spec) {
		return NewPlaceholder("%s", selectionMessage(spec.Kind()))
	}
	for _, f := range spec.Referenced() {
		if !table.HasColumn(f.Name()) {
			return NewPlaceholder("Selected columns not found in data")
		}
	}

	var (
		c   *Chart
		err error
	)
	switch s := spec.(type) {
	case chart.BarSpec:
		c, err = m.bar(table, s)
	case chart.LineSpec:
		c, err = m.line(table, s)
	case chart.ScatterSpec:
		c, err = m.scatter(table, s)
	case chart.PieSpec:
		c, err = m.pie(table, s)
	default:
		return NewPlaceholder("Unsupported chart type: %s", spec.Kind())
	}
	if err != nil {
		m.logger.Warn("[ChartMapper] %s chart failed: %v", spec.Kind(), err)
		return NewPlaceholder("Error creating chart: %v", err)
	}
	return c
}

func kindOf(spec chart.Spec) string {
	if spec == nil {
		return "nil"
	}
	return string(spec.Kind())
}

func selectionMessage(kind chart.Kind) string {
	switch kind {
	case chart.KindBar:
		return "Please select X and Y axes for bar chart"
	case chart.KindLine:
		return "Please select X and Y axes for line chart"
	case chart.KindScatter:
		return "Please select X and Y axes for scatter plot"
	case chart.KindPie:
		return "Please select Values and Names for pie chart"
	}
	return fmt.Sprintf("Unsupported chart type: %s", kind)
}

// AxisTitle turns a column name into an axis label: underscores become
// spaces and words are title-cased.
func AxisTitle(column string) string {
	// Casers keep state and cannot be shared across goroutines
	return cases.Title(language.Und).String(strings.ReplaceAll(column, "_", " "))
}

func column(t *dataset.Table, f chart.Field) *dataset.Column {
	col, ok := t.Column(f.Name())
	if !ok {
		// checked by Map
		panic(core.NewColumnNotFoundError(f.Name()))
	}
	return col
}

func requireNumeric(col *dataset.Column) error {
	if col.Type() != dataset.TypeNumeric {
		return core.NewColumnTypeError(col.Name(), dataset.TypeNumeric.String(), col.Type().String())
	}
	return nil
}

func axisType(col *dataset.Column) string {
	switch col.Type() {
	case dataset.TypeNumeric:
		return AxisValue
	case dataset.TypeTemporal:
		return AxisTime
	}
	return AxisCategory
}

// groupName is the series name for row i of an optional color column.
func groupName(col *dataset.Column, i int) string {
	if col == nil {
		return ""
	}
	if col.IsMissing(i) {
		return missingGroup
	}
	return col.String(i)
}

// seriesIndex keeps series in order of first appearance.
type seriesIndex struct {
	series []Series
	index  map[string]int
}

func newSeriesIndex() *seriesIndex {
	return &seriesIndex{index: make(map[string]int)}
}

func (s *seriesIndex) get(name string) *Series {
	i, ok := s.index[name]
	if !ok {
		i = len(s.series)
		s.index[name] = i
		s.series = append(s.series, Series{Name: name})
	}
	return &s.series[i]
}

func (m *Mapper) bar(t *dataset.Table, spec chart.BarSpec) (*Chart, error) {
	x, y := column(t, spec.X), column(t, spec.Y)
	if err := requireNumeric(y); err != nil {
		return nil, err
	}
	var color *dataset.Column
	if spec.Color.IsSet() {
		color = column(t, spec.Color)
	}

	var categories []string
	seen := make(map[string]bool)
	groups := newSeriesIndex()
	// per series: category -> position in Points
	cells := make(map[string]map[string]int)

	for i := 0; i < t.Len(); i++ {
		if x.IsMissing(i) {
			continue
		}
		label := x.String(i)
		if !seen[label] {
			seen[label] = true
			categories = append(categories, label)
		}

		name := groupName(color, i)
		if name == "" {
			name = spec.Y.Name()
		}
		s := groups.get(name)
		if cells[name] == nil {
			cells[name] = make(map[string]int)
		}
		pos, ok := cells[name][label]
		if !ok {
			pos = len(s.Points)
			cells[name][label] = pos
			s.Points = append(s.Points, Point{Label: label})
		}
		if v, ok := y.Number(i); ok {
			s.Points[pos].Y += v
		}
	}

	return &Chart{
		Kind:       chart.KindBar,
		ChartTitle: fmt.Sprintf("Bar Chart: %s by %s", spec.Y.Name(), spec.X.Name()),
		XTitle:     AxisTitle(spec.X.Name()),
		YTitle:     AxisTitle(spec.Y.Name()),
		XAxisType:  AxisCategory,
		Categories: categories,
		ShowLegend: spec.Color.IsSet(),
		Stacked:    true,
		Series:     groups.series,
	}, nil
}

func (m *Mapper) line(t *dataset.Table, spec chart.LineSpec) (*Chart, error) {
	x, y := column(t, spec.X), column(t, spec.Y)
	if err := requireNumeric(y); err != nil {
		return nil, err
	}
	var color *dataset.Column
	if spec.Color.IsSet() {
		color = column(t, spec.Color)
	}

	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x.Compare(order[a], order[b]) < 0
	})

	c := &Chart{
		Kind:       chart.KindLine,
		ChartTitle: fmt.Sprintf("Line Chart: %s over %s", spec.Y.Name(), spec.X.Name()),
		XTitle:     AxisTitle(spec.X.Name()),
		YTitle:     AxisTitle(spec.Y.Name()),
		XAxisType:  axisType(x),
		ShowLegend: spec.Color.IsSet(),
		Markers:    true,
	}

	seen := make(map[string]bool)
	groups := newSeriesIndex()
	for _, i := range order {
		if x.IsMissing(i) || y.IsMissing(i) {
			continue
		}
		p := pointAt(x, i)
		p.Y = y.Value(i).Number

		if c.XAxisType == AxisCategory && !seen[p.Label] {
			seen[p.Label] = true
			c.Categories = append(c.Categories, p.Label)
		}

		name := groupName(color, i)
		if name == "" {
			name = spec.Y.Name()
		}
		s := groups.get(name)
		s.Points = append(s.Points, p)
	}
	c.Series = groups.series
	return c, nil
}

func (m *Mapper) scatter(t *dataset.Table, spec chart.ScatterSpec) (*Chart, error) {
	x, y := column(t, spec.X), column(t, spec.Y)
	if err := requireNumeric(y); err != nil {
		return nil, err
	}
	var color, size *dataset.Column
	if spec.Color.IsSet() {
		color = column(t, spec.Color)
	}
	if spec.Size.IsSet() {
		size = column(t, spec.Size)
		if err := requireNumeric(size); err != nil {
			return nil, err
		}
	}
	scale := newSizeScale(size)

	c := &Chart{
		Kind:         chart.KindScatter,
		ChartTitle:   fmt.Sprintf("Scatter Plot: %s vs %s", spec.Y.Name(), spec.X.Name()),
		XTitle:       AxisTitle(spec.X.Name()),
		YTitle:       AxisTitle(spec.Y.Name()),
		XAxisType:    axisType(x),
		ShowLegend:   spec.Color.IsSet() || spec.Size.IsSet(),
		HoverColumns: t.ColumnNames(),
	}

	columns := t.Columns()
	seen := make(map[string]bool)
	groups := newSeriesIndex()
	for i := 0; i < t.Len(); i++ {
		if x.IsMissing(i) || y.IsMissing(i) {
			continue
		}
		p := pointAt(x, i)
		p.Y = y.Value(i).Number
		p.Size = scale.size(i)
		p.Hover = make(map[string]string, len(columns))
		for _, col := range columns {
			p.Hover[col.Name()] = col.String(i)
		}

		if c.XAxisType == AxisCategory && !seen[p.Label] {
			seen[p.Label] = true
			c.Categories = append(c.Categories, p.Label)
		}

		name := groupName(color, i)
		if name == "" {
			name = spec.Y.Name()
		}
		s := groups.get(name)
		s.Points = append(s.Points, p)
	}
	c.Series = groups.series
	return c, nil
}

func (m *Mapper) pie(t *dataset.Table, spec chart.PieSpec) (*Chart, error) {
	values, names := column(t, spec.Values), column(t, spec.Names)
	if err := requireNumeric(values); err != nil {
		return nil, err
	}

	var points []Point
	index := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		if names.IsMissing(i) {
			continue
		}
		label := names.String(i)
		pos, ok := index[label]
		if !ok {
			pos = len(points)
			index[label] = pos
			points = append(points, Point{Label: label})
		}
		if v, ok := values.Number(i); ok {
			points[pos].Y += v
		}
	}

	return &Chart{
		Kind:           chart.KindPie,
		ChartTitle:     fmt.Sprintf("Pie Chart: %s by %s", spec.Values.Name(), spec.Names.Name()),
		ShowLegend:     true,
		LegendVertical: true,
		Series:         []Series{{Name: spec.Values.Name(), Points: points}},
	}, nil
}

// pointAt positions a point on the x axis of col.
func pointAt(col *dataset.Column, i int) Point {
	p := Point{Label: col.String(i)}
	if v, ok := col.Number(i); ok {
		p.X = &v
	}
	return p
}

// sizeScale maps a numeric column linearly onto symbol sizes.
type sizeScale struct {
	col      *dataset.Column
	min, max float64
}

func newSizeScale(col *dataset.Column) sizeScale {
	s := sizeScale{col: col}
	if col == nil {
		return s
	}
	nums := col.Numbers()
	if len(nums) == 0 {
		return s
	}
	s.min, s.max = nums[0], nums[0]
	for _, v := range nums[1:] {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	return s
}

func (s sizeScale) size(i int) int {
	if s.col == nil {
		return 0
	}
	v, ok := s.col.Number(i)
	if !ok {
		return minSymbolSize
	}
	if s.max == s.min {
		return (minSymbolSize + maxSymbolSize) / 2
	}
	return minSymbolSize + int((v-s.min)/(s.max-s.min)*float64(maxSymbolSize-minSymbolSize)+0.5)
}
