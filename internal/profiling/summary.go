package profiling

import (
	"sort"

	"dashviz/domain/dataset"
	"dashviz/internal"
)

const topValueCount = 5

// Per-cell size estimates used for the memory figure.
const (
	numericCellBytes  = 8
	temporalCellBytes = 24
	textCellBytes     = 16
	columnBytes       = 128
)

// BasicInfo is the shape of the table.
type BasicInfo struct {
	TotalRows    int      `json:"total_rows"`
	TotalColumns int      `json:"total_columns"`
	MemoryUsage  int64    `json:"memory_usage"`
	ColumnNames  []string `json:"column_names"`
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary describes a text column.
type CategoricalSummary struct {
	UniqueValues int          `json:"unique_values"`
	MostFrequent *string      `json:"most_frequent"`
	TopValues    []ValueCount `json:"top_5_values"`
}

// Summary is the dataset report.
type Summary struct {
	BasicInfo          BasicInfo                     `json:"basic_info"`
	DataTypes          map[string]string             `json:"data_types"`
	MissingValues      map[string]int                `json:"missing_values"`
	NumericSummary     map[string]NumericSummary     `json:"numeric_summary"`
	CategoricalSummary map[string]CategoricalSummary `json:"categorical_summary"`
}

// Reporter builds summaries.
type Reporter struct {
	analyzer *DistributionAnalyzer
	logger   *internal.Logger
}

// NewReporter creates a reporter.
func NewReporter() *Reporter {
	return &Reporter{
		analyzer: NewDistributionAnalyzer(),
		logger:   internal.DefaultLogger,
	}
}

// Summarize computes the report of t with a default reporter.
func Summarize(t *dataset.Table) Summary {
	return NewReporter().Summarize(t)
}

// Summarize computes the report of t. It never fails; numeric columns with
// no values are reported with count 0 and undefined statistics.
func (r *Reporter) Summarize(t *dataset.Table) Summary {
	s := Summary{
		BasicInfo: BasicInfo{
			TotalRows:    t.Len(),
			TotalColumns: t.Width(),
			MemoryUsage:  memoryUsage(t),
			ColumnNames:  t.ColumnNames(),
		},
		DataTypes:          make(map[string]string, t.Width()),
		MissingValues:      make(map[string]int, t.Width()),
		NumericSummary:     make(map[string]NumericSummary),
		CategoricalSummary: make(map[string]CategoricalSummary),
	}

	for _, col := range t.Columns() {
		s.DataTypes[col.Name()] = col.Type().String()
		s.MissingValues[col.Name()] = col.MissingCount()

		switch col.Type() {
		case dataset.TypeNumeric:
			values := col.Numbers()
			if len(values) == 0 {
				s.NumericSummary[col.Name()] = EmptySummary()
				continue
			}
			desc, err := r.analyzer.Describe(values)
			if err != nil {
				r.logger.Warn("[SummaryReporter] describe %s: %v", col.Name(), err)
				continue
			}
			s.NumericSummary[col.Name()] = desc
		case dataset.TypeText:
			s.CategoricalSummary[col.Name()] = categorical(col)
		}
	}
	return s
}

// NumericColumns returns the names in the numeric section in table order.
func (s Summary) NumericColumns() []string {
	var out []string
	for _, name := range s.BasicInfo.ColumnNames {
		if _, ok := s.NumericSummary[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// CategoricalColumns returns the names in the categorical section in table order.
func (s Summary) CategoricalColumns() []string {
	var out []string
	for _, name := range s.BasicInfo.ColumnNames {
		if _, ok := s.CategoricalSummary[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// categorical counts values; ties are broken by value so the result is
// stable.
func categorical(col *dataset.Column) CategoricalSummary {
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			counts[col.String(i)]++
		}
	}

	freq := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		freq = append(freq, ValueCount{Value: v, Count: n})
	}
	sort.Slice(freq, func(i, j int) bool {
		if freq[i].Count != freq[j].Count {
			return freq[i].Count > freq[j].Count
		}
		return freq[i].Value < freq[j].Value
	})

	out := CategoricalSummary{UniqueValues: len(freq)}
	if len(freq) > 0 {
		mode := freq[0].Value
		out.MostFrequent = &mode
	}
	if len(freq) > topValueCount {
		freq = freq[:topValueCount]
	}
	out.TopValues = freq
	return out
}

func memoryUsage(t *dataset.Table) int64 {
	var total int64
	for _, col := range t.Columns() {
		total += columnBytes + int64(len(col.Name()))
		for i := 0; i < col.Len(); i++ {
			switch col.Type() {
			case dataset.TypeNumeric:
				total += numericCellBytes
			case dataset.TypeTemporal:
				total += temporalCellBytes
			default:
				total += textCellBytes + int64(len(col.Value(i).Text))
			}
		}
	}
	return total
}
