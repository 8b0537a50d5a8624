package profiling

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Stat is a statistic that may be undefined. NaN encodes as JSON null.
type Stat float64

// MarshalJSON implements json.Marshaler.
func (s Stat) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Defined reports whether the statistic has a value.
func (s Stat) Defined() bool {
	return !math.IsNaN(float64(s)) && !math.IsInf(float64(s), 0)
}

// NumericSummary is the describe() block of a numeric column plus shape
// markers. Std is the sample standard deviation; quartiles interpolate
// linearly between order statistics.
type NumericSummary struct {
	Count    int  `json:"count"`
	Mean     Stat `json:"mean"`
	Std      Stat `json:"std"`
	Min      Stat `json:"min"`
	Q25      Stat `json:"25%"`
	Median   Stat `json:"50%"`
	Q75      Stat `json:"75%"`
	Max      Stat `json:"max"`
	Skewness Stat `json:"skewness"`
	Kurtosis Stat `json:"kurtosis"`
	Outliers int  `json:"outliers"`
}

// EmptySummary is the block of a numeric column without values: count 0 and
// every statistic undefined.
func EmptySummary() NumericSummary {
	nan := Stat(math.NaN())
	return NumericSummary{
		Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan,
		Skewness: nan, Kurtosis: nan,
	}
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Describe computes the summary of the non-missing values of a column.
// Statistics that need more observations than available are NaN.
func (da *DistributionAnalyzer) Describe(data []float64) (NumericSummary, error) {
	summary := NumericSummary{Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}

	std := math.NaN()
	if len(data) > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	q25, q75 := quantile(sorted, 0.25), quantile(sorted, 0.75)

	summary.Mean = Stat(mean)
	summary.Std = Stat(std)
	summary.Min = Stat(min)
	summary.Max = Stat(max)
	summary.Q25 = Stat(q25)
	summary.Median = Stat(quantile(sorted, 0.5))
	summary.Q75 = Stat(q75)
	summary.Skewness = Stat(skewness(data))
	summary.Kurtosis = Stat(kurtosis(data))
	summary.Outliers = detectOutliers(data, q25, q75)

	return summary, nil
}

// quantile interpolates linearly between the closest ranks of sorted data
// (the dataframe default). stats.Percentile averages neighbours instead.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// skewness is the bias-corrected sample skewness.
func skewness(data []float64) float64 {
	if len(data) < 3 {
		return math.NaN()
	}
	return stat.Skew(data, nil)
}

// kurtosis is the sample excess kurtosis.
func kurtosis(data []float64) float64 {
	if len(data) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(data, nil)
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
