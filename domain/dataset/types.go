package dataset

import (
	"path/filepath"
	"strings"
	"time"

	"dashviz/domain/core"
)

// DatasetStatus represents the processing state of an upload
type DatasetStatus string

const (
	StatusProcessing DatasetStatus = "processing"
	StatusReady      DatasetStatus = "ready"
	StatusFailed     DatasetStatus = "failed"
)

// Dataset describes an uploaded file and the table it produced
type Dataset struct {
	ID core.ID `json:"id"`

	// File information
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	Format           string `json:"format"`
	Encoding         string `json:"encoding,omitempty"`
	SheetName        string `json:"sheet_name,omitempty"`

	// Dataset statistics
	RecordCount int     `json:"record_count"`
	FieldCount  int     `json:"field_count"`
	MissingRate float64 `json:"missing_rate"`

	// Processing state
	Status       DatasetStatus `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewDataset creates a new dataset record for an upload
func NewDataset(originalFilename string, size int64) *Dataset {
	return &Dataset{
		ID:               core.NewID(),
		OriginalFilename: originalFilename,
		FileSize:         size,
		Status:           StatusProcessing,
		CreatedAt:        time.Now(),
	}
}

// MarkReady records the shape of the loaded table
func (d *Dataset) MarkReady(t *Table) {
	d.Status = StatusReady
	d.ErrorMessage = ""
	d.RecordCount = t.Len()
	d.FieldCount = t.Width()
	d.MissingRate = MissingRate(t)
}

// MarkFailed records a load failure
func (d *Dataset) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
}

// IsReady returns true if the dataset is ready for use
func (d *Dataset) IsReady() bool {
	return d.Status == StatusReady
}

// GetDisplayName returns the file name without directory or extension
func (d *Dataset) GetDisplayName() string {
	base := filepath.Base(d.OriginalFilename)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return d.OriginalFilename
}

// MissingRate is the share of missing cells in t, 0 for an empty table.
func MissingRate(t *Table) float64 {
	cells := t.Len() * t.Width()
	if cells == 0 {
		return 0
	}
	missing := 0
	for _, c := range t.columns {
		missing += c.MissingCount()
	}
	return float64(missing) / float64(cells)
}
