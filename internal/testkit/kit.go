package testkit

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dashviz/domain/dataset"
)

// SampleCSV is the example dataset shown to users before their first upload.
const SampleCSV = `Date,Category,Value,Count
2023-01-01,A,100,5
2023-01-02,B,150,8
2023-01-03,A,120,6
`

// SampleTable returns SampleCSV as an already typed table.
func SampleTable() *dataset.Table {
	return dataset.MustNewTable(
		dataset.NewTemporalColumn("Date", []time.Time{
			Day(2023, 1, 1), Day(2023, 1, 2), Day(2023, 1, 3),
		}),
		dataset.NewTextColumn("Category", []string{"A", "B", "A"}),
		dataset.NewNumericColumn("Value", []float64{100, 150, 120}),
		dataset.NewNumericColumn("Count", []float64{5, 8, 6}),
	)
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CSV joins rows into CSV text. Cells are written verbatim.
func CSV(rows ...[]string) []byte {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Workbook builds an xlsx file with one sheet holding header and rows.
// Cells that are float64 or int are written as numbers.
func Workbook(sheet string, header []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MixedColumnCSV returns a single column "v" of n cells where the first
// numeric cells parse as numbers and the rest are words.
func MixedColumnCSV(numeric, n int) []byte {
	rows := [][]string{{"v"}}
	for i := 0; i < n; i++ {
		if i < numeric {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1)})
		} else {
			rows = append(rows, []string{fmt.Sprintf("word%d", i)})
		}
	}
	return CSV(rows...)
}
