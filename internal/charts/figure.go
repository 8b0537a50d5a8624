package charts

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"dashviz/domain/chart"
	"dashviz/domain/core"
)

// Figure is the result of mapping a chart spec onto a table: either a Chart
// or a Placeholder. Figures are immutable and cheap to rebuild.
type Figure interface {
	// Title is the chart title, or the message of a placeholder.
	Title() string
	// ID is the DOM id used when the figure is rendered on its own.
	ID() string
	// Charter builds a fresh go-echarts chart for embedding in a page.
	Charter() components.Charter
	// RenderHTML writes a self-contained interactive page.
	RenderHTML(w io.Writer) error
	// JSON returns the structured form, including the ECharts option.
	JSON() ([]byte, error)
}

// echart is what every go-echarts chart type provides.
type echart interface {
	components.Charter
	Render(w io.Writer) error
	JSON() map[string]interface{}
}

// Axis types understood by ECharts.
const (
	AxisCategory = "category"
	AxisValue    = "value"
	AxisTime     = "time"
)

// Point is one mark of a series. Label is the display form of the x value
// (the slice name for pies); X is set for value and time axes.
type Point struct {
	Label string            `json:"label,omitempty"`
	X     *float64          `json:"x,omitempty"`
	Y     float64           `json:"y"`
	Size  int               `json:"size,omitempty"`
	Hover map[string]string `json:"hover,omitempty"`
}

// Series is one named group of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart is a fully configured figure.
type Chart struct {
	Kind           chart.Kind `json:"kind"`
	ChartTitle     string     `json:"title"`
	XTitle         string     `json:"x_title,omitempty"`
	YTitle         string     `json:"y_title,omitempty"`
	XAxisType      string     `json:"x_axis_type,omitempty"`
	Categories     []string   `json:"categories,omitempty"`
	ShowLegend     bool       `json:"show_legend"`
	LegendVertical bool       `json:"legend_vertical,omitempty"`
	Stacked        bool       `json:"stacked,omitempty"`
	Markers        bool       `json:"markers,omitempty"`
	HoverColumns   []string   `json:"hover_columns,omitempty"`
	Series         []Series   `json:"series"`

	// heatmap cells as [x, y, value] triples
	cells [][3]interface{}
}

// Placeholder stands in for a chart that cannot be drawn.
type Placeholder struct {
	Message string `json:"message"`
}

// NewPlaceholder creates a placeholder figure.
func NewPlaceholder(format string, args ...interface{}) *Placeholder {
	return &Placeholder{Message: fmt.Sprintf(format, args...)}
}

// IsPlaceholder reports whether f is a placeholder.
func IsPlaceholder(f Figure) bool {
	_, ok := f.(*Placeholder)
	return ok
}

func (c *Chart) Title() string       { return c.ChartTitle }
func (p *Placeholder) Title() string { return p.Message }

// ID is the DOM id of the rendered chart. It covers every field and point, so
// figures differing only in series grouping get different ids.
func (c *Chart) ID() string {
	b, err := json.Marshal(c)
	if err != nil {
		b = []byte(fmt.Sprintf("%+v", *c))
	}
	return "chart_" + core.HashStrings(string(c.Kind), string(b), fmt.Sprint(c.cells)).Short(12)
}

// ID is the DOM id of the rendered placeholder.
func (p *Placeholder) ID() string {
	return "placeholder_" + core.HashStrings(p.Message).Short(12)
}

func (c *Chart) Charter() components.Charter       { return c.echart(c.ID()) }
func (p *Placeholder) Charter() components.Charter { return p.echart(p.ID()) }

func (c *Chart) charterAt(id string) components.Charter       { return c.echart(id) }
func (p *Placeholder) charterAt(id string) components.Charter { return p.echart(id) }

func (c *Chart) RenderHTML(w io.Writer) error {
	return c.echart(c.ID()).Render(w)
}

func (p *Placeholder) RenderHTML(w io.Writer) error {
	return p.echart(p.ID()).Render(w)
}

func (c *Chart) JSON() ([]byte, error) {
	id := c.ID()
	e := c.echart(id)
	e.Validate()
	return json.Marshal(struct {
		*Chart
		Placeholder bool                   `json:"placeholder"`
		ID          string                 `json:"id"`
		Option      map[string]interface{} `json:"option"`
	}{c, false, id, e.JSON()})
}

func (p *Placeholder) JSON() ([]byte, error) {
	return json.Marshal(struct {
		Placeholder bool   `json:"placeholder"`
		ID          string `json:"id"`
		Message     string `json:"message"`
	}{true, p.ID(), p.Message})
}

func initOpts(id, title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		ChartID:   id,
		Width:     "100%",
		Height:    "420px",
	})
}

// echart renders an empty canvas with the message as its title.
func (p *Placeholder) echart(id string) echart {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(id, p.Message),
		charts.WithTitleOpts(opts.Title{
			Title: p.Message,
			Left:  "center",
			Top:   "middle",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false)}),
	)
	return bar
}

func (c *Chart) globalOpts(id string) []charts.GlobalOpts {
	legend := opts.Legend{Show: opts.Bool(c.ShowLegend), Top: "bottom"}
	if c.LegendVertical {
		legend = opts.Legend{Show: opts.Bool(c.ShowLegend), Orient: "vertical", Right: "0", Top: "top"}
	}

	tooltip := opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}
	switch c.Kind {
	case chart.KindScatter:
		tooltip = opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}"}
	case chart.KindPie, kindHeatmap:
		tooltip = opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}
	}

	return []charts.GlobalOpts{
		initOpts(id, c.ChartTitle),
		charts.WithTitleOpts(opts.Title{Title: c.ChartTitle}),
		charts.WithLegendOpts(legend),
		charts.WithTooltipOpts(tooltip),
	}
}

func (c *Chart) axisOpts() []charts.GlobalOpts {
	x := opts.XAxis{Name: c.XTitle, Type: c.XAxisType}
	if c.XAxisType == AxisCategory {
		x.Data = c.Categories
	}
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(opts.YAxis{Name: c.YTitle, Type: AxisValue}),
	}
}

func (c *Chart) echart(id string) echart {
	switch c.Kind {
	case chart.KindBar, kindHistogram:
		return c.bar(id)
	case chart.KindLine:
		return c.line(id)
	case chart.KindScatter:
		return c.scatter(id)
	case chart.KindPie:
		return c.pie(id)
	case kindHeatmap:
		return c.heatmap(id)
	}
	return (&Placeholder{Message: fmt.Sprintf("Unsupported chart type: %s", c.Kind)}).echart(id)
}

func (c *Chart) bar(id string) echart {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(c.globalOpts(id), c.axisOpts()...)...)
	bar.SetXAxis(c.Categories)

	for _, s := range c.Series {
		// align each series on the shared categories
		byLabel := make(map[string]float64, len(s.Points))
		for _, p := range s.Points {
			byLabel[p.Label] = p.Y
		}
		data := make([]opts.BarData, len(c.Categories))
		for i, cat := range c.Categories {
			if v, ok := byLabel[cat]; ok {
				data[i] = opts.BarData{Value: v}
			} else {
				data[i] = opts.BarData{Value: "-"}
			}
		}
		var seriesOpts []charts.SeriesOpts
		if c.Stacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(s.Name, data, seriesOpts...)
	}
	return bar
}

func (c *Chart) line(id string) echart {
	line := charts.NewLine()
	line.SetGlobalOptions(append(c.globalOpts(id), c.axisOpts()...)...)
	if c.XAxisType == AxisCategory {
		line.SetXAxis(c.Categories)
	}

	for _, s := range c.Series {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.LineData{Value: []interface{}{p.axisValue(c.XAxisType), p.Y}}
		}
		line.AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(c.Markers),
		}))
	}
	return line
}

func (c *Chart) scatter(id string) echart {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(c.globalOpts(id), c.axisOpts()...)...)
	if c.XAxisType == AxisCategory {
		scatter.SetXAxis(c.Categories)
	}

	for _, s := range c.Series {
		data := make([]opts.ScatterData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.ScatterData{
				Name:       p.hoverText(c.HoverColumns),
				Value:      []interface{}{p.axisValue(c.XAxisType), p.Y},
				SymbolSize: p.Size,
			}
		}
		scatter.AddSeries(s.Name, data)
	}
	return scatter
}

func (c *Chart) pie(id string) echart {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOpts(id)...)

	for _, s := range c.Series {
		data := make([]opts.PieData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.PieData{Name: p.Label, Value: p.Y}
		}
		pie.AddSeries(s.Name, data, charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  "inside",
			Formatter: "{b}: {d}%",
		}))
	}
	return pie
}

func (c *Chart) heatmap(id string) echart {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(c.globalOpts(id),
		charts.WithXAxisOpts(opts.XAxis{Type: AxisCategory, Data: c.Categories, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: AxisCategory, Data: c.Categories, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#313695", "#74add1", "#e0f3f8", "#fee090", "#f46d43", "#a50026"},
			},
		}),
	)...)
	hm.SetXAxis(c.Categories)

	data := make([]opts.HeatMapData, len(c.cells))
	for i, cell := range c.cells {
		data[i] = opts.HeatMapData{Value: cell}
	}
	name := "correlation"
	if len(c.Series) > 0 {
		name = c.Series[0].Name
	}
	hm.AddSeries(name, data)
	return hm
}

func (p Point) axisValue(axisType string) interface{} {
	switch {
	case axisType == AxisTime && p.X != nil:
		// ECharts time axes take milliseconds
		return int64(*p.X * 1000)
	case axisType == AxisValue && p.X != nil:
		return *p.X
	}
	return p.Label
}

func (p Point) hoverText(columns []string) string {
	if len(p.Hover) == 0 {
		return p.Label
	}
	text := ""
	for i, col := range columns {
		if i > 0 {
			text += "<br/>"
		}
		text += col + ": " + p.Hover[col]
	}
	return text
}
