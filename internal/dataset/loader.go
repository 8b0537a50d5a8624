package dataset

import (
	"fmt"
	"time"

	"dashviz/adapters/datareadiness/coercer"
	"dashviz/adapters/excel"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal"
)

// Loader turns uploaded CSV and Excel files into typed tables
type Loader struct {
	reader  *excel.DataReader
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewLoader creates a loader with the given promotion thresholds.
func NewLoader(config coercer.CoercionConfig) *Loader {
	c := coercer.NewTypeCoercer(config)
	return &Loader{
		reader:  excel.NewDataReader(c),
		coercer: c,
		logger:  internal.DefaultLogger,
	}
}

// NewDefaultLoader creates a loader with the default 0.5 thresholds.
func NewDefaultLoader() *Loader {
	return NewLoader(coercer.DefaultCoercionConfig())
}

// Load decodes file contents named name and infers column types. It fails
// with core.ErrUnsupportedFormat or core.ErrParse; no partial table is
// returned on failure.
func (l *Loader) Load(name string, data []byte) (*domainDataset.Table, error) {
	raw, err := l.reader.Read(name, data)
	if err != nil {
		return nil, err
	}
	return l.build(name, raw)
}

// LoadDataset is Load that also returns the upload record describing the
// file. The record is returned even on failure, marked failed.
func (l *Loader) LoadDataset(name string, data []byte) (*domainDataset.Table, *domainDataset.Dataset, error) {
	record := domainDataset.NewDataset(name, int64(len(data)))
	raw, err := l.reader.Read(name, data)
	if err != nil {
		record.MarkFailed(err)
		return nil, record, err
	}
	record.Format = raw.Format
	record.Encoding = raw.Encoding
	record.SheetName = raw.Sheet

	table, err := l.build(name, raw)
	if err != nil {
		record.MarkFailed(err)
		return nil, record, err
	}
	record.MarkReady(table)
	return table, record, nil
}

// LoadFile is Load for a file on disk.
func (l *Loader) LoadFile(path string) (*domainDataset.Table, error) {
	raw, err := l.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.build(path, raw)
}

func (l *Loader) build(name string, raw *excel.RawTable) (*domainDataset.Table, error) {
	start := time.Now()
	rows := nonEmptyRows(raw)

	columns := make([]*domainDataset.Column, 0, len(raw.Headers))
	for i, header := range raw.Headers {
		cells := make([]string, len(rows))
		empty := true
		for k, r := range rows {
			cells[k] = raw.Rows[r][i]
			if !coercer.IsMissing(cells[k]) {
				empty = false
			}
		}
		if empty {
			l.logger.Debug("[Loader] dropping empty column %q", header)
			continue
		}

		col, analysis := l.coercer.CoerceColumn(header, cells)
		l.logger.Trace("[Loader] column %q: %d/%d numeric, %d/%d temporal -> %s",
			header, analysis.NumericCount, analysis.ValidCount,
			analysis.TemporalCount, analysis.ValidCount, col.Type())
		columns = append(columns, col)
	}

	table, err := domainDataset.NewTable(columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", name, err)
	}

	l.logger.Info("[Loader] loaded %s: %d rows, %d columns in %.2fms",
		name, table.Len(), table.Width(), float64(time.Since(start).Nanoseconds())/1e6)
	return table, nil
}

// nonEmptyRows returns the indices of rows holding at least one value.
func nonEmptyRows(raw *excel.RawTable) []int {
	rows := make([]int, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		for _, cell := range row {
			if !coercer.IsMissing(cell) {
				rows = append(rows, i)
				break
			}
		}
	}
	return rows
}
