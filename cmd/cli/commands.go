package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dashviz/domain/chart"
	"dashviz/internal/charts"
	"dashviz/internal/dataset"
	"dashviz/internal/export"
)

func newInspectCmd(opts *pipelineOptions) *cobra.Command {
	var format string
	var columns bool
	var out string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the summary report of a CSV or Excel file",
		Long: `Load a file, apply any filters and print its summary report.

Example: dashviz inspect sales.csv --filter region=North --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeFn()

			if columns {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "COLUMN\tTYPE\tNULLS\tUNIQUE\tSAMPLES")
				for _, info := range dataset.DescribeColumns(s.Working()) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%v\n",
						info.Name, info.Type, info.NullCount, info.UniqueCount, info.SampleValues)
				}
				return tw.Flush()
			}

			summary := s.Summary()
			switch format {
			case "text":
				_, err = fmt.Fprint(w, summary.FormatText())
			case "json":
				var data []byte
				if data, err = summary.JSON(); err == nil {
					_, err = w.Write(append(data, '\n'))
				}
			case "html":
				_, err = w.Write(summary.RenderHTML())
			case "markdown":
				_, err = fmt.Fprint(w, summary.Markdown())
			default:
				err = fmt.Errorf("unknown format %q: want text, json, html or markdown", format)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text|json|html|markdown")
	cmd.Flags().BoolVar(&columns, "columns", false, "Print per-column information instead of the report")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newAggregateCmd(opts *pipelineOptions) *cobra.Command {
	var groupBy, target, function, out string

	cmd := &cobra.Command{
		Use:   "aggregate [file]",
		Short: "Group rows by a column and reduce another, printing CSV",
		Long: `Group the (filtered) rows by one column and reduce a target column with
sum, mean, count, min or max.

Example: dashviz aggregate sales.csv --group-by region --target revenue --function sum`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := dataset.ParseAggFunc(function)
			if err != nil {
				return err
			}
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			result, err := s.Aggregate(dataset.AggregationSpec{GroupBy: groupBy, Target: target, Function: fn})
			if err != nil {
				return err
			}
			data, err := export.CSV(result)
			if err != nil {
				return err
			}

			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeFn()
			_, err = w.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Column to group by")
	cmd.Flags().StringVar(&target, "target", "", "Column to reduce")
	cmd.Flags().StringVar(&function, "function", string(dataset.AggSum), "Reduction: sum|mean|count|min|max")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("group-by")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newChartCmd(opts *pipelineOptions) *cobra.Command {
	var cfg chart.Config
	var x, y, color, size, values, names string
	var format, out string

	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Render one chart as an HTML page or ECharts JSON",
		Long: `Render a bar, line, scatter or pie chart of the (filtered) rows.

Example: dashviz chart sales.csv --type bar --x region --y revenue --color product -o revenue.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}

			for name, field := range map[string]struct {
				value *string
				dst   **string
			}{
				"x": {&x, &cfg.X}, "y": {&y, &cfg.Y}, "color": {&color, &cfg.Color},
				"size": {&size, &cfg.Size}, "values": {&values, &cfg.Values}, "names": {&names, &cfg.Names},
			} {
				// unset flags stay nil so the chart reports the missing selection
				if cmd.Flags().Changed(name) {
					*field.dst = field.value
				}
			}

			figure := charts.NewMapper().Map(s.Working(), cfg.Spec())
			if charts.IsPlaceholder(figure) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", figure.Title())
			}
			return writeFigure(cmd, figure, format, out)
		},
	}

	cmd.Flags().StringVarP(&cfg.Type, "type", "t", string(chart.KindBar), "Chart type: bar|line|scatter|pie")
	cmd.Flags().StringVar(&x, "x", "", "X axis column")
	cmd.Flags().StringVar(&y, "y", "", "Y axis column")
	cmd.Flags().StringVar(&color, "color", "", "Column to split series by")
	cmd.Flags().StringVar(&size, "size", "", "Scatter symbol size column")
	cmd.Flags().StringVar(&values, "values", "", "Pie values column")
	cmd.Flags().StringVar(&names, "names", "", "Pie names column")
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html|json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newDashboardCmd(opts *pipelineOptions) *cobra.Command {
	var out string
	var heatmap bool

	cmd := &cobra.Command{
		Use:   "dashboard [file]",
		Short: "Render the default four-chart dashboard into one HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			var figures []charts.Figure
			for _, nf := range s.Figures() {
				figures = append(figures, nf.Figure)
			}
			if heatmap {
				figures = append(figures, s.Heatmap())
			}

			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeFn()
			return charts.RenderPage(w, "Dashboard: "+s.Dataset.GetDisplayName(), figures)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "dashboard.html", "Output file, - for stdout")
	cmd.Flags().BoolVar(&heatmap, "heatmap", false, "Append a correlation heatmap")
	return cmd
}

func newExportCmd(opts *pipelineOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the (filtered) rows as CSV, Excel or a zip bundle",
		Long: `Export the (filtered) rows. The zip bundle also holds the summary report
and the default dashboard charts.

Example: dashviz export sales.xlsx --range revenue=100:5000 --format zip -o sales.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			w, closeFn, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeFn()

			var data []byte
			switch format {
			case "csv":
				data, err = export.CSV(s.Working())
			case "xlsx":
				data, err = export.Excel(s.Working())
			case "zip":
				return export.Bundle(w, s.Working(), s.Figures())
			default:
				return fmt.Errorf("unknown format %q: want csv, xlsx or zip", format)
			}
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv|xlsx|zip")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout")
	return cmd
}

func writeFigure(cmd *cobra.Command, fig charts.Figure, format, out string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "html":
		data, err = export.ChartHTML(fig)
	case "json":
		data, err = export.ChartJSON(fig)
		if err == nil {
			var pretty json.RawMessage = data
			data, err = json.MarshalIndent(pretty, "", "  ")
		}
	default:
		return fmt.Errorf("unknown format %q: want html or json", format)
	}
	if err != nil {
		return err
	}

	w, closeFn, err := output(cmd, out)
	if err != nil {
		return err
	}
	defer closeFn()
	_, err = w.Write(data)
	return err
}
