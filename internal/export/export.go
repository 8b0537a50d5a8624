package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"dashviz/domain/dataset"
)

// DataSheet is the sheet name of single-table workbooks.
const DataSheet = "Data"

// Sheet is one named table of a multi-sheet workbook.
type Sheet struct {
	Name  string
	Table *dataset.Table
}

// CSV writes t as comma separated text with a header row and no index.
// Missing cells are empty.
func CSV(t *dataset.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, err
	}
	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.Len(); i++ {
		for j, col := range cols {
			record[j] = col.String(i)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel writes t to a workbook with a single sheet named Data.
func Excel(t *dataset.Table) ([]byte, error) {
	return Workbook([]Sheet{{Name: DataSheet, Table: t}})
}

// Workbook writes each table to its own sheet, in order.
func Workbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if sheet.Name != "Sheet1" {
				if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
					return nil, fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
				}
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	names := sheet.Table.ColumnNames()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet.Name, err)
	}

	cols := sheet.Table.Columns()
	for i := 0; i < sheet.Table.Len(); i++ {
		row := make([]interface{}, len(cols))
		for j, col := range cols {
			row[j] = cellValue(col, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet.Name, err)
		}
	}

	for j, col := range cols {
		if col.Type() != dataset.TypeTemporal || sheet.Table.Len() == 0 {
			continue
		}
		if err := styleDates(f, sheet.Name, j+1, col); err != nil {
			return err
		}
	}
	return nil
}

// styleDates gives a temporal column an ISO number format so the sheet
// reads back as dates.
func styleDates(f *excelize.File, sheet string, colNum int, col *dataset.Column) error {
	format := "yyyy-mm-dd"
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		if t := col.Value(i).Time; t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
			format = "yyyy-mm-dd hh:mm:ss"
			break
		}
	}

	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	top, err := excelize.CoordinatesToCellName(colNum, 2)
	if err != nil {
		return err
	}
	bottom, err := excelize.CoordinatesToCellName(colNum, col.Len()+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, top, bottom, style)
}

// cellValue returns the native value excelize should store; nil leaves the
// cell empty.
func cellValue(col *dataset.Column, i int) interface{} {
	if col.IsMissing(i) {
		return nil
	}
	v := col.Value(i)
	switch col.Type() {
	case dataset.TypeNumeric:
		return v.Number
	case dataset.TypeTemporal:
		return v.Time
	}
	return v.Text
}
