package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"dashviz/domain/dataset"
)

// TypeCoercer promotes text columns to numeric or temporal columns when
// enough of their cells convert.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the promotion thresholds. A column is promoted
// only when the converted share of its non-missing cells is strictly
// greater than the threshold.
type CoercionConfig struct {
	NumericThreshold  float64  `json:"numeric_threshold"`
	TemporalThreshold float64  `json:"temporal_threshold"`
	TimeLayouts       []string `json:"time_layouts,omitempty"`
}

// DefaultCoercionConfig returns the dashboard defaults: more than half of
// the non-missing cells must convert.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:  0.5,
		TemporalThreshold: 0.5,
		TimeLayouts:       DefaultTimeLayouts(),
	}
}

// DefaultTimeLayouts lists the date/time layouts tried in order.
// Month-first layouts precede day-first ones for ambiguous dates.
func DefaultTimeLayouts() []string {
	return []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		"01/02/2006",
		"1/2/2006 15:04",
		"1/2/2006",
		"01-02-06",
		"1/2/06",
		"02-Jan-2006",
		"2 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan-2006",
		"January 2006",
		"2006-01",
		time.RFC1123Z,
		time.RFC1123,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.TimeLayouts) == 0 {
		config.TimeLayouts = DefaultTimeLayouts()
	}
	return &TypeCoercer{config: config}
}

// Config returns the coercer configuration.
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// missingTokens are read as missing cells, following the usual spreadsheet
// and dataframe conventions.
var missingTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// IsMissing reports whether a raw cell represents a missing value.
func IsMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || missingTokens[s]
}

// ParseNumber attempts a strict numeric parse. Infinities and NaN are rejected.
func (c *TypeCoercer) ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseTime attempts each configured layout in order.
func (c *TypeCoercer) ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range c.config.TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	ValidCount      int                `json:"valid_count"`
	NumericCount    int                `json:"numeric_count"`
	TemporalCount   int                `json:"temporal_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	TemporalRatio   float64            `json:"temporal_ratio"`
	RecommendedType dataset.ColumnType `json:"recommended_type"`
}

// AnalyzeTypeDistribution counts how many non-missing cells convert to each
// type and picks the column type. Numeric wins over temporal.
func (c *TypeCoercer) AnalyzeTypeDistribution(cells []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(cells)}

	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumber(cell); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseTime(cell); ok {
			analysis.TemporalCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.TemporalRatio = float64(analysis.TemporalCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)

	return analysis
}

// determineRecommendedType applies the strict thresholds, numeric first.
func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.ColumnType {
	if analysis.ValidCount == 0 {
		return dataset.TypeText
	}
	if analysis.NumericRatio > c.config.NumericThreshold {
		return dataset.TypeNumeric
	}
	if analysis.TemporalRatio > c.config.TemporalThreshold {
		return dataset.TypeTemporal
	}
	return dataset.TypeText
}

// CoerceColumn builds a typed column from raw cells. Cells that do not
// convert to the chosen type become missing.
func (c *TypeCoercer) CoerceColumn(name string, cells []string) (*dataset.Column, TypeAnalysis) {
	analysis := c.AnalyzeTypeDistribution(cells)
	values := make([]dataset.Value, len(cells))

	for i, cell := range cells {
		if IsMissing(cell) {
			values[i] = dataset.MissingValue()
			continue
		}
		switch analysis.RecommendedType {
		case dataset.TypeNumeric:
			if f, ok := c.ParseNumber(cell); ok {
				values[i] = dataset.NumberValue(f)
			} else {
				values[i] = dataset.MissingValue()
			}
		case dataset.TypeTemporal:
			if t, ok := c.ParseTime(cell); ok {
				values[i] = dataset.TimeValue(t)
			} else {
				values[i] = dataset.MissingValue()
			}
		default:
			values[i] = dataset.TextValue(cell)
		}
	}

	return dataset.NewColumn(name, analysis.RecommendedType, values), analysis
}
