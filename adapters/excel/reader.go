package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"dashviz/adapters/datareadiness/coercer"
	"dashviz/domain/core"
	"dashviz/internal"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader decodes uploaded CSV and Excel files into raw string tables
type DataReader struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader. The coercer is used to keep date cells of
// workbooks in their formatted form while reading numbers unformatted.
func NewDataReader(c *coercer.TypeCoercer) *DataReader {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &DataReader{coercer: c, logger: internal.DefaultLogger}
}

// FormatOf returns the input format implied by a file name.
func FormatOf(name string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case FormatCSV, FormatXLSX, FormatXLS:
		return ext, nil
	}
	return "", core.NewUnsupportedFormatError(ext)
}

// ReadFile reads a file from disk.
func (r *DataReader) ReadFile(path string) (*RawTable, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Read(filepath.Base(path), data)
}

// Read decodes file contents according to the extension of name.
func (r *DataReader) Read(name string, data []byte) (*RawTable, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var table *RawTable
	switch format {
	case FormatCSV:
		table, err = r.readCSV(data)
	default:
		table, err = r.readWorkbook(format, data)
	}
	if err != nil {
		r.logger.Warn("[DataReader] %s decode failed for %s: %v", strings.ToUpper(format), name, err)
		return nil, err
	}

	r.logger.Debug("[DataReader] %s file %s decoded in %.2fms (%d columns, %d rows)",
		strings.ToUpper(format), name, float64(time.Since(start).Nanoseconds())/1e6,
		len(table.Headers), len(table.Rows))
	return table, nil
}

// readCSV decodes UTF-8 first and falls back to Latin-1 once.
func (r *DataReader) readCSV(data []byte) (*RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var firstErr error
	if utf8.Valid(data) {
		rows, err := parseCSV(data)
		if err == nil {
			return r.processRows(FormatCSV, "utf-8", rows)
		}
		firstErr = err
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, core.NewParseError(FormatCSV, err)
	}
	rows, err := parseCSV(decoded)
	if err != nil {
		if firstErr != nil {
			err = firstErr
		}
		return nil, core.NewParseError(FormatCSV, err)
	}
	r.logger.Info("[DataReader] CSV input is not valid UTF-8, decoded as Latin-1")
	return r.processRows(FormatCSV, "latin-1", rows)
}

func parseCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	width := len(rows[0])
	for i, row := range rows[1:] {
		if len(row) > width {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", i+2, width, len(row))
		}
	}
	return rows, nil
}

// readWorkbook reads the first sheet of an Excel workbook. Numeric cells are
// read unformatted unless their formatted text is a date.
func (r *DataReader) readWorkbook(format string, data []byte) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.NewParseError(format, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewParseError(format, fmt.Errorf("workbook has no sheets"))
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, core.NewParseError(format, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, core.NewParseError(format, fmt.Errorf("failed to read sheet %s: %w", sheet, err))
	}
	if len(formatted) == 0 {
		return nil, core.NewParseError(format, fmt.Errorf("sheet %s is empty", sheet))
	}

	rows := make([][]string, len(formatted))
	for i, row := range formatted {
		cells := make([]string, len(row))
		for j, shown := range row {
			cells[j] = shown
			if i == 0 || i >= len(raw) || j >= len(raw[i]) {
				continue
			}
			value := raw[i][j]
			if value == shown {
				continue
			}
			if _, isNumber := r.coercer.ParseNumber(value); !isNumber {
				continue
			}
			if _, isDate := r.coercer.ParseTime(shown); isDate {
				continue
			}
			cells[j] = value
		}
		rows[i] = cells
	}

	table, err := r.processRows(format, "", rows)
	if err != nil {
		return nil, err
	}
	table.Sheet = sheet
	return table, nil
}

// processRows normalizes the header row and pads data rows to its width.
func (r *DataReader) processRows(format, encoding string, rows [][]string) (*RawTable, error) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, core.NewParseError(format, fmt.Errorf("no columns to parse from file"))
	}

	headers := normalizeHeaders(rows[0], width)
	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, width)
		for j := 0; j < width && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		dataRows = append(dataRows, cells)
	}

	return &RawTable{
		Format:   format,
		Encoding: encoding,
		Headers:  headers,
		Rows:     dataRows,
	}, nil
}

// normalizeHeaders trims names, names blank headers by position and
// suffixes duplicates with .1, .2, ...
func normalizeHeaders(row []string, width int) []string {
	headers := make([]string, width)
	used := make(map[string]bool, width)
	dups := make(map[string]int)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(row) {
			base = strings.TrimSpace(row[i])
		}
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for used[name] {
			dups[base]++
			name = fmt.Sprintf("%s.%d", base, dups[base])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}
