package profiling

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ReportTitle heads the plain-text report.
const ReportTitle = "DATA SUMMARY REPORT"

const pageTitle = "Data Summary Report"

type statLine struct {
	label string
	value func(NumericSummary) string
}

var statLines = []statLine{
	{"count", func(n NumericSummary) string { return fmt.Sprintf("%.2f", float64(n.Count)) }},
	{"mean", func(n NumericSummary) string { return formatStat(n.Mean) }},
	{"std", func(n NumericSummary) string { return formatStat(n.Std) }},
	{"min", func(n NumericSummary) string { return formatStat(n.Min) }},
	{"25%", func(n NumericSummary) string { return formatStat(n.Q25) }},
	{"50%", func(n NumericSummary) string { return formatStat(n.Median) }},
	{"75%", func(n NumericSummary) string { return formatStat(n.Q75) }},
	{"max", func(n NumericSummary) string { return formatStat(n.Max) }},
	{"skewness", func(n NumericSummary) string { return formatStat(n.Skewness) }},
	{"kurtosis", func(n NumericSummary) string { return formatStat(n.Kurtosis) }},
	{"outliers", func(n NumericSummary) string { return fmt.Sprintf("%d", n.Outliers) }},
}

func formatStat(s Stat) string {
	if !s.Defined() {
		return "nan"
	}
	return fmt.Sprintf("%.2f", float64(s))
}

func mostFrequent(c CategoricalSummary) string {
	if c.MostFrequent == nil {
		return "None"
	}
	return *c.MostFrequent
}

// FormatText renders the plain-text report.
func (s Summary) FormatText() string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", strings.Repeat("=", 50))
	line(ReportTitle)
	line("%s", strings.Repeat("=", 50))
	line("")

	line("BASIC INFORMATION:")
	line("%s", strings.Repeat("-", 20))
	line("Total Rows: %d", s.BasicInfo.TotalRows)
	line("Total Columns: %d", s.BasicInfo.TotalColumns)
	line("Memory Usage: %d", s.BasicInfo.MemoryUsage)
	line("")

	line("COLUMNS:")
	line("%s", strings.Repeat("-", 10))
	for i, name := range s.BasicInfo.ColumnNames {
		line("%d. %s (%s) - Missing: %d", i+1, name, s.DataTypes[name], s.MissingValues[name])
	}
	line("")

	if numeric := s.NumericColumns(); len(numeric) > 0 {
		line("NUMERIC COLUMNS SUMMARY:")
		line("%s", strings.Repeat("-", 25))
		for _, name := range numeric {
			n := s.NumericSummary[name]
			line("")
			line("%s:", name)
			for _, sl := range statLines {
				line("  %s: %s", sl.label, sl.value(n))
			}
		}
		line("")
	}

	if categorical := s.CategoricalColumns(); len(categorical) > 0 {
		line("CATEGORICAL COLUMNS SUMMARY:")
		line("%s", strings.Repeat("-", 30))
		for _, name := range categorical {
			c := s.CategoricalSummary[name]
			line("")
			line("%s:", name)
			line("  Unique values: %d", c.UniqueValues)
			line("  Most frequent: %s", mostFrequent(c))
			line("  Top 5 values:")
			for _, vc := range c.TopValues {
				line("    %s: %d", vc.Value, vc.Count)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// JSON renders the report as indented JSON.
func (s Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Markdown renders the report as a markdown document.
func (s Summary) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n## Basic information\n\n", pageTitle)
	fmt.Fprintf(&b, "- **Total rows:** %d\n", s.BasicInfo.TotalRows)
	fmt.Fprintf(&b, "- **Total columns:** %d\n", s.BasicInfo.TotalColumns)
	fmt.Fprintf(&b, "- **Memory usage:** %d bytes\n\n", s.BasicInfo.MemoryUsage)

	b.WriteString("## Columns\n\n| # | Column | Type | Missing |\n|---|---|---|---|\n")
	for i, name := range s.BasicInfo.ColumnNames {
		fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, escapeCell(name), s.DataTypes[name], s.MissingValues[name])
	}
	b.WriteString("\n")

	if numeric := s.NumericColumns(); len(numeric) > 0 {
		b.WriteString("## Numeric columns\n\n| Column |")
		for _, sl := range statLines {
			fmt.Fprintf(&b, " %s |", sl.label)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---|", len(statLines)))
		b.WriteString("\n")
		for _, name := range numeric {
			fmt.Fprintf(&b, "| %s |", escapeCell(name))
			for _, sl := range statLines {
				fmt.Fprintf(&b, " %s |", sl.value(s.NumericSummary[name]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if categorical := s.CategoricalColumns(); len(categorical) > 0 {
		b.WriteString("## Categorical columns\n\n")
		for _, name := range categorical {
			c := s.CategoricalSummary[name]
			fmt.Fprintf(&b, "### %s\n\n", name)
			fmt.Fprintf(&b, "Unique values: %d, most frequent: `%s`\n\n", c.UniqueValues, mostFrequent(c))
			b.WriteString("| Value | Count |\n|---|---|\n")
			for _, vc := range c.TopValues {
				fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(vc.Value), vc.Count)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderHTML renders the markdown report as a complete HTML page.
func (s Summary) RenderHTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(s.Markdown()))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: pageTitle,
	})
	return markdown.Render(doc, renderer)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
