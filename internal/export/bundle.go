package export

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"dashviz/domain/dataset"
	"dashviz/internal/charts"
	"dashviz/internal/profiling"
)

// Bundle entry names.
const (
	BundleCSV          = "data.csv"
	BundleExcel        = "data.xlsx"
	BundleSummaryText  = "summary_report.txt"
	BundleSummaryJSON  = "summary_report.json"
	BundleSummaryHTML  = "summary_report.html"
	bundleChartsFolder = "charts/"
)

// NamedFigure is a chart to include in a bundle.
type NamedFigure struct {
	Name   string
	Figure charts.Figure
}

// ChartHTML renders a figure as a standalone page.
func ChartHTML(fig charts.Figure) ([]byte, error) {
	var buf bytes.Buffer
	if err := fig.RenderHTML(&buf); err != nil {
		return nil, fmt.Errorf("failed to render chart %q: %w", fig.Title(), err)
	}
	return buf.Bytes(), nil
}

// ChartJSON returns the structured form of a figure.
func ChartJSON(fig charts.Figure) ([]byte, error) {
	return fig.JSON()
}

type entry struct {
	name string
	data []byte
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// chartFileName makes a chart name safe for use inside the archive;
// unnamed charts are numbered from 1.
func chartFileName(name string, i int) string {
	clean := strings.TrimLeft(unsafeName.ReplaceAllString(name, "_"), ".")
	if clean == "" {
		return fmt.Sprintf("chart_%d", i+1)
	}
	return clean
}

// Bundle writes a zip archive holding the table as CSV and Excel, the
// summary report as text, JSON and HTML, and every figure as HTML and JSON
// under charts/.
func Bundle(w io.Writer, t *dataset.Table, figures []NamedFigure) error {
	summary := profiling.Summarize(t)

	csvData, err := CSV(t)
	if err != nil {
		return err
	}
	excelData, err := Excel(t)
	if err != nil {
		return err
	}
	summaryJSON, err := summary.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	entries := []entry{
		{BundleCSV, csvData},
		{BundleExcel, excelData},
		{BundleSummaryText, []byte(summary.FormatText())},
		{BundleSummaryJSON, summaryJSON},
		{BundleSummaryHTML, summary.RenderHTML()},
	}

	used := make(map[string]bool)
	for i, nf := range figures {
		name := chartFileName(nf.Name, i)
		for base, n := name, 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true

		html, err := ChartHTML(nf.Figure)
		if err != nil {
			return err
		}
		js, err := ChartJSON(nf.Figure)
		if err != nil {
			return fmt.Errorf("failed to encode chart %q: %w", nf.Name, err)
		}
		entries = append(entries,
			entry{bundleChartsFolder + name + ".html", html},
			entry{bundleChartsFolder + name + ".json", js},
		)
	}

	zw := zip.NewWriter(w)
	modified := time.Now()
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}
	return zw.Close()
}
