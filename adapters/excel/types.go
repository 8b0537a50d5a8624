package excel

// Supported input formats, keyed by lower-case file extension.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// RawTable is a decoded sheet before type inference: a header row and
// string cells. Every row has exactly len(Headers) cells.
type RawTable struct {
	Format   string     // Source format
	Encoding string     // Text encoding used for CSV input
	Sheet    string     // Sheet name for workbook input
	Headers  []string   // Column headers
	Rows     [][]string // Data rows
}

// Column returns the cells of column i.
func (t *RawTable) Column(i int) []string {
	cells := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[i]
	}
	return cells
}
